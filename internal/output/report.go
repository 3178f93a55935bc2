package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// GenerateReport renders results in the named format and writes them to w
func GenerateReport(w io.Writer, results *domain.ScenarioResults, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", format)
	}
	data, err := f.Format(results)
	if err != nil {
		return fmt.Errorf("failed to format %s report: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// Recommendation summarises the scenario that keeps the most after tax
type Recommendation struct {
	ScenarioName     string
	TaxChange        decimal.Decimal
	AfterTaxChange   decimal.Decimal
	PercentageChange decimal.Decimal // after-tax change vs baseline, percent

	// NotModeled lists scenarios whose jurisdiction has no provincial rules.
	// They are never recommended: their provincial tax is zero, not computed.
	NotModeled []string
}

// AnalyzeScenarios picks the non-baseline scenario with the highest after-tax
// income among those with provincial rules. The zero ScenarioName means no
// such scenario beats the baseline; nothing is picked when the baseline
// itself is not modeled.
func AnalyzeScenarios(results *domain.ScenarioResults) Recommendation {
	base := results.Baseline()
	if base == nil {
		return Recommendation{}
	}

	var rec Recommendation
	for _, r := range results.Results {
		if !r.Breakdown.ProvincialModeled {
			rec.NotModeled = append(rec.NotModeled, r.Label)
		}
	}
	if !base.Breakdown.ProvincialModeled {
		return rec
	}

	best := base.Breakdown.AfterTaxIncome
	for _, r := range results.Results[1:] {
		if !r.Breakdown.ProvincialModeled || !r.Breakdown.AfterTaxIncome.GreaterThan(best) {
			continue
		}
		best = r.Breakdown.AfterTaxIncome
		rec.ScenarioName = r.Label
		rec.TaxChange = r.Breakdown.TotalTax.Sub(base.Breakdown.TotalTax)
		rec.AfterTaxChange = r.Breakdown.AfterTaxIncome.Sub(base.Breakdown.AfterTaxIncome)
		rec.PercentageChange = decimal.Zero
		if base.Breakdown.AfterTaxIncome.IsPositive() {
			rec.PercentageChange = rec.AfterTaxChange.Div(base.Breakdown.AfterTaxIncome).Mul(decimal.NewFromInt(100)).Round(2)
		}
	}
	return rec
}

// NotModeledNote explains why the listed scenarios were left out of the
// recommendation. It is empty when every scenario is modeled.
func (r Recommendation) NotModeledNote() string {
	if len(r.NotModeled) == 0 {
		return ""
	}
	return fmt.Sprintf("Not modeled (no provincial rules, provincial tax shown as zero): %s", strings.Join(r.NotModeled, ", "))
}

// SaveConfiguration saves a configuration to a YAML file
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatRate formats a fractional rate such as 0.4571 as a percentage
func FormatRate(rate decimal.Decimal) string {
	return FormatPercentage(rate.Shift(2))
}
