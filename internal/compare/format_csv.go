package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Province",
		"RRSP Deduction",
		"Taxable Income",
		"Total Tax",
		"After-Tax Income",
		"Effective Rate %",
		"Marginal Rate",
		"Tax Diff from Base",
		"After-Tax Diff from Base",
		"After-Tax % Change",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		string(result.Input.Jurisdiction),
		result.RRSPDeduction.StringFixed(2),
		result.Breakdown.TotalTaxableIncome.StringFixed(2),
		result.TotalTax.StringFixed(2),
		result.AfterTaxIncome.StringFixed(2),
		result.EffectiveTaxRate.StringFixed(2),
		result.MarginalCombinedRate.StringFixed(4),
		result.TaxDiffFromBase.StringFixed(2),
		result.AfterTaxDiffFromBase.StringFixed(2),
		result.AfterTaxPctFromBase.StringFixed(2),
	}
}
