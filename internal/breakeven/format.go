package breakeven

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats optimization results as a console table
type TableFormatter struct{}

// Format generates a formatted table for optimization result
func (tf *TableFormatter) Format(result *OptimizationResult) string {
	var sb strings.Builder

	sb.WriteString("RRSP CONTRIBUTION OPTIMIZATION\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Optimization Goal:   %s\n", result.Request.Goal))
	sb.WriteString(fmt.Sprintf("Province:            %s\n", result.Request.Base.Jurisdiction))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("OPTIMAL CONTRIBUTION\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("RRSP Contribution:   $%s\n", tf.formatCurrency(result.OptimalContribution)))
	sb.WriteString(fmt.Sprintf("Contribution Room:   $%s\n", tf.formatCurrency(result.ContributionRoom)))
	if result.BracketFloor != nil && result.BracketFloor.IsPositive() {
		sb.WriteString(fmt.Sprintf("Bracket Floor:       $%s\n", tf.formatCurrency(*result.BracketFloor)))
	}
	sb.WriteString("\n")

	bd := result.Breakdown
	sb.WriteString("RESULTS AT OPTIMUM\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Taxable Income:      $%s\n", tf.formatCurrency(bd.TotalTaxableIncome)))
	sb.WriteString(fmt.Sprintf("Total Tax:           $%s\n", tf.formatCurrency(bd.TotalTax)))
	sb.WriteString(fmt.Sprintf("After-Tax Income:    $%s\n", tf.formatCurrency(bd.AfterTaxIncome)))
	sb.WriteString(fmt.Sprintf("Effective Rate:      %s%%\n", bd.EffectiveTaxRate.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Marginal Rate:       %s%%\n", bd.MarginalCombinedRate.Shift(2).StringFixed(2)))
	sb.WriteString("\n")

	sb.WriteString("COMPARISON TO BASE SCENARIO\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	if result.TaxDiffFromBase.IsZero() {
		sb.WriteString("Tax Impact:          none\n")
	} else {
		sb.WriteString(fmt.Sprintf("Tax Impact:          %s$%s\n",
			tf.deltaSymbol(result.TaxDiffFromBase), tf.formatCurrency(result.TaxDiffFromBase.Abs())))
		sb.WriteString(fmt.Sprintf("After-Tax Change:    %s$%s\n",
			tf.deltaSymbol(result.AfterTaxDiffFromBase), tf.formatCurrency(result.AfterTaxDiffFromBase.Abs())))
	}
	if result.SavingsPerDollar.IsPositive() {
		sb.WriteString(fmt.Sprintf("Saved per $1:        $%s\n", result.SavingsPerDollar.StringFixed(4)))
	}
	sb.WriteString("\n")

	if result.Request.Goal == GoalTargetTax && result.Request.Constraints.TargetTax != nil {
		target := *result.Request.Constraints.TargetTax
		sb.WriteString("TARGET TAX\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		sb.WriteString(fmt.Sprintf("Target Tax:          $%s\n", tf.formatCurrency(target)))
		sb.WriteString(fmt.Sprintf("Achieved Tax:        $%s\n", tf.formatCurrency(bd.TotalTax)))
		diff := bd.TotalTax.Sub(target)
		sb.WriteString(fmt.Sprintf("Difference:          %s$%s\n", tf.deltaSymbol(diff), tf.formatCurrency(diff.Abs())))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatMultiGoal formats results from multiple optimizations
func (tf *TableFormatter) FormatMultiGoal(result *MultiGoalResult) string {
	var sb strings.Builder

	sb.WriteString("MULTI-GOAL RRSP OPTIMIZATION\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString("SUMMARY OF ALL OPTIMIZATIONS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-14s %14s %12s %14s %12s %10s\n",
		"Goal", "Contribution", "Total Tax", "After-Tax", "Tax Change", "Per $1"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, res := range result.Results {
		sb.WriteString(fmt.Sprintf("%-14s %14s %12s %14s %12s %10s\n",
			tf.truncate(string(res.Request.Goal), 14),
			"$"+tf.formatShort(res.OptimalContribution),
			"$"+tf.formatShort(res.Breakdown.TotalTax),
			"$"+tf.formatShort(res.Breakdown.AfterTaxIncome),
			tf.deltaSymbol(res.TaxDiffFromBase)+"$"+tf.formatShort(res.TaxDiffFromBase.Abs()),
			res.SavingsPerDollar.StringFixed(4)))
	}
	sb.WriteString("\n")

	sb.WriteString("BEST SCENARIOS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	if result.LowestTax != nil {
		sb.WriteString(fmt.Sprintf("Lowest Tax:      %s ($%s total tax)\n",
			result.LowestTax.Request.Goal,
			tf.formatCurrency(result.LowestTax.Breakdown.TotalTax)))
	}
	if result.BestSavingsPerDollar != nil {
		sb.WriteString(fmt.Sprintf("Best Per Dollar: %s ($%s saved per $1)\n",
			result.BestSavingsPerDollar.Request.Goal,
			result.BestSavingsPerDollar.SavingsPerDollar.StringFixed(4)))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *OptimizationResult) (string, error) {
	return jf.encode(result)
}

// FormatMultiGoal formats multi-goal results as JSON
func (jf *JSONFormatter) FormatMultiGoal(result *MultiGoalResult) (string, error) {
	return jf.encode(result)
}

func (jf *JSONFormatter) encode(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
