package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// SweepFormatter defines a formatter for one-parameter sweeps
type SweepFormatter interface {
	FormatSweep(result *domain.SweepResult) (string, error)
	Name() string
}

// SweepConsoleFormatter formats sweep output for console
type SweepConsoleFormatter struct{}

func (scf SweepConsoleFormatter) Name() string { return "console" }

func (scf SweepConsoleFormatter) FormatSweep(result *domain.SweepResult) (string, error) {
	if len(result.Points) == 0 {
		return "", fmt.Errorf("no points in sweep")
	}

	var buf bytes.Buffer
	param := result.Parameter

	fmt.Fprintf(&buf, "SENSITIVITY ANALYSIS: %s\n", strings.ToUpper(strings.ReplaceAll(param.Name, "_", " ")))
	fmt.Fprintln(&buf, "=================================================================")
	fmt.Fprintf(&buf, "Range: %s to %s (%d steps)\n", FormatCurrency(param.MinValue), FormatCurrency(param.MaxValue), param.Steps)
	if param.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", param.Description)
	}
	fmt.Fprintf(&buf, "Base: total tax %s, after tax %s\n", FormatCurrency(result.Base.TotalTax), FormatCurrency(result.Base.AfterTaxIncome))
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "%-14s %-14s %-14s %-14s %-12s %-10s\n",
		"Value", "Total Tax", "Tax Δ", "After-Tax", "Marginal", "Saved/$1")
	fmt.Fprintln(&buf, strings.Repeat("-", 82))

	lowest := result.LowestTax()
	for i := range result.Points {
		p := &result.Points[i]
		value := FormatCurrency(p.Value)
		if p == lowest {
			value += " ←"
		}
		fmt.Fprintf(&buf, "%-14s %-14s %-14s %-14s %-12s %-10s\n",
			value,
			FormatCurrency(p.Breakdown.TotalTax),
			sign(p.TaxDelta)+FormatCurrency(p.TaxDelta),
			FormatCurrency(p.Breakdown.AfterTaxIncome),
			FormatRate(p.Breakdown.MarginalCombinedRate),
			p.MarginalSaving.StringFixed(4))
	}
	fmt.Fprintln(&buf)

	if lowest != nil {
		fmt.Fprintf(&buf, "Lowest tax at %s = %s (%s vs base)\n",
			param.Name, FormatCurrency(lowest.Value), FormatCurrency(lowest.TaxDelta))
	}

	return buf.String(), nil
}

// SweepCSVFormatter formats sweep output as CSV
type SweepCSVFormatter struct{}

func (scf SweepCSVFormatter) Name() string { return "csv" }

func (scf SweepCSVFormatter) FormatSweep(result *domain.SweepResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{result.Parameter.Name, "TaxableIncome", "TotalTax", "TaxDelta", "AfterTaxIncome", "AfterTaxDelta", "MarginalRate", "MarginalSaving"}); err != nil {
		return "", err
	}
	for _, p := range result.Points {
		row := []string{
			p.Value.StringFixed(2),
			p.Breakdown.TotalTaxableIncome.StringFixed(2),
			p.Breakdown.TotalTax.StringFixed(2),
			p.TaxDelta.StringFixed(2),
			p.Breakdown.AfterTaxIncome.StringFixed(2),
			p.AfterTaxDelta.StringFixed(2),
			p.Breakdown.MarginalCombinedRate.StringFixed(4),
			p.MarginalSaving.StringFixed(4),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

// SweepJSONFormatter formats sweep output as JSON
type SweepJSONFormatter struct{}

func (sjf SweepJSONFormatter) Name() string { return "json" }

func (sjf SweepJSONFormatter) FormatSweep(result *domain.SweepResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sweep: %w", err)
	}
	return string(data), nil
}

// NewSweepFormatter returns the sweep formatter for format, console by default
func NewSweepFormatter(format string) SweepFormatter {
	switch format {
	case "csv":
		return SweepCSVFormatter{}
	case "json":
		return SweepJSONFormatter{}
	default:
		return SweepConsoleFormatter{}
	}
}
