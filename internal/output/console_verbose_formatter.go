package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleVerboseFormatter renders the full breakdown of every scenario
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(results *domain.ScenarioResults) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintf(&buf, "DETAILED INCOME TAX ANALYSIS (%d)\n", results.FiscalYear)
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range DefaultAssumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	base := results.Baseline()
	for i, r := range results.Results {
		title := fmt.Sprintf("SCENARIO %d: %s", i+1, r.Label)
		fmt.Fprintln(&buf, title)
		fmt.Fprintln(&buf, strings.Repeat("=", len(title)))
		writeBreakdown(&buf, r.Breakdown)

		if base != nil && i > 0 {
			writeDelta(&buf, base.Breakdown, r.Breakdown)
		}
		fmt.Fprintln(&buf)
	}

	rec := AnalyzeScenarios(results)
	if rec.ScenarioName != "" {
		fmt.Fprintln(&buf, "SUMMARY & RECOMMENDATIONS")
		fmt.Fprintln(&buf, "=========================")
		fmt.Fprintf(&buf, "Best scenario: %s\n", rec.ScenarioName)
		fmt.Fprintf(&buf, "After-Tax Income Change: %s (%s)\n", FormatCurrency(rec.AfterTaxChange), FormatPercentage(rec.PercentageChange))
		fmt.Fprintf(&buf, "Monthly Change: %s\n", FormatCurrency(rec.AfterTaxChange.Div(decimal.NewFromInt(12)).Round(2)))
	}
	if note := rec.NotModeledNote(); note != "" {
		fmt.Fprintln(&buf, note)
	}

	return buf.Bytes(), nil
}

func writeBreakdown(buf *bytes.Buffer, bd domain.TaxBreakdown) {
	fmt.Fprintf(buf, "Province: %s\n", bd.Jurisdiction)
	fmt.Fprintln(buf, "----------------------------------------")
	fmt.Fprintln(buf, "INCOME:")
	fmt.Fprintf(buf, "  Employment:              %s\n", FormatCurrency(bd.EmploymentIncome))
	fmt.Fprintf(buf, "  Freelance (net):         %s\n", FormatCurrency(bd.FreelanceIncome))
	fmt.Fprintf(buf, "  Rental (net):            %s\n", FormatCurrency(bd.RentalIncome))
	fmt.Fprintf(buf, "  TOTAL GROSS INCOME:      %s\n", FormatCurrency(bd.TotalGrossIncome))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "DEDUCTIONS:")
	fmt.Fprintf(buf, "  RRSP:                    %s\n", FormatCurrency(bd.RRSPDeduction))
	fmt.Fprintf(buf, "  Freelance Expenses:      %s\n", FormatCurrency(bd.FreelanceExpenses))
	fmt.Fprintf(buf, "  Rental Expenses:         %s\n", FormatCurrency(bd.RentalExpenses))
	fmt.Fprintf(buf, "  TAXABLE INCOME:          %s\n", FormatCurrency(bd.TotalTaxableIncome))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "TAXES & CONTRIBUTIONS:")
	fmt.Fprintf(buf, "  Federal Tax:             %s (before credits %s)\n", FormatCurrency(bd.FederalTax), FormatCurrency(bd.FederalTaxBeforeCredits))
	if bd.ProvincialAbatement.IsPositive() {
		fmt.Fprintf(buf, "  Provincial Abatement:    %s\n", FormatCurrency(bd.ProvincialAbatement))
	}
	if bd.ProvincialModeled {
		fmt.Fprintf(buf, "  Provincial Tax:          %s (before credits %s)\n", FormatCurrency(bd.ProvincialTax), FormatCurrency(bd.ProvincialTaxBeforeCredits))
	} else {
		fmt.Fprintf(buf, "  Provincial Tax:          not modeled for %s\n", bd.Jurisdiction)
	}
	fmt.Fprintf(buf, "  Pension Plan:            %s\n", FormatCurrency(bd.PensionPlanContribution))
	fmt.Fprintf(buf, "  EI Premium:              %s\n", FormatCurrency(bd.EIPremium))
	fmt.Fprintf(buf, "  TOTAL TAX:               %s\n", FormatCurrency(bd.TotalTax))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "RESULT:")
	fmt.Fprintf(buf, "  After-Tax Income:        %s\n", FormatCurrency(bd.AfterTaxIncome))
	fmt.Fprintf(buf, "  Monthly After-Tax:       %s\n", FormatCurrency(bd.AfterTaxIncome.Div(decimal.NewFromInt(12)).Round(2)))
	fmt.Fprintf(buf, "  Effective Rate:          %s\n", FormatPercentage(bd.EffectiveTaxRate))
	fmt.Fprintf(buf, "  Marginal Rate:           %s (federal %s, provincial %s)\n",
		FormatRate(bd.MarginalCombinedRate), FormatRate(bd.MarginalFederalRate), FormatRate(bd.MarginalProvincialRate))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "REGISTERED ACCOUNTS:")
	fmt.Fprintf(buf, "  RRSP Room:               %s\n", FormatCurrency(bd.RRSPContributionRoom))
	fmt.Fprintf(buf, "  RRSP Room Remaining:     %s\n", FormatCurrency(bd.RemainingRRSPRoom()))
	fmt.Fprintf(buf, "  Savings if Maxed:        %s\n", FormatCurrency(bd.RRSPTaxSavingsIfMaxed))
	fmt.Fprintf(buf, "  TFSA Room:               %s\n", FormatCurrency(bd.TFSARoom))
}

func writeDelta(buf *bytes.Buffer, base, bd domain.TaxBreakdown) {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "CHANGE VS BASELINE:")
	taxChange := bd.TotalTax.Sub(base.TotalTax)
	afterChange := bd.AfterTaxIncome.Sub(base.AfterTaxIncome)
	fmt.Fprintf(buf, "  Total Tax:               %s%s\n", sign(taxChange), FormatCurrency(taxChange))
	fmt.Fprintf(buf, "  After-Tax Income:        %s%s\n", sign(afterChange), FormatCurrency(afterChange))
}

func sign(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+"
	}
	return ""
}
