package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// ConsoleFormatter prints a one-line-per-scenario summary
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(results *domain.ScenarioResults) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "TAX SCENARIO SUMMARY")
	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	fmt.Fprintf(&buf, "Fiscal Year: %d\n", results.FiscalYear)

	base := results.Baseline()
	if base == nil {
		fmt.Fprintln(&buf, "No scenarios calculated")
		return buf.Bytes(), nil
	}
	fmt.Fprintf(&buf, "Baseline After-Tax Income: %s\n\n", FormatCurrency(base.Breakdown.AfterTaxIncome))

	fmt.Fprintf(&buf, "%-24s %12s %12s %14s %9s\n", "Scenario", "Taxable", "Total Tax", "After-Tax", "Marginal")
	fmt.Fprintln(&buf, strings.Repeat("-", 72))
	for _, r := range results.Results {
		bd := r.Breakdown
		fmt.Fprintf(&buf, "%-24s %12s %12s %14s %9s\n",
			truncate(r.Label, 24),
			bd.TotalTaxableIncome.StringFixed(0),
			bd.TotalTax.StringFixed(0),
			bd.AfterTaxIncome.StringFixed(0),
			FormatRate(bd.MarginalCombinedRate))
	}
	fmt.Fprintln(&buf)

	rec := AnalyzeScenarios(results)
	if rec.ScenarioName != "" {
		fmt.Fprintf(&buf, "Recommended: %s (Δ %s after tax, %s)\n",
			rec.ScenarioName, FormatCurrency(rec.AfterTaxChange), FormatPercentage(rec.PercentageChange))
	}
	if note := rec.NotModeledNote(); note != "" {
		fmt.Fprintln(&buf, note)
	}

	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
