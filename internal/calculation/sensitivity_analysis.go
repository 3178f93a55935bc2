package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SensitivityAnalyzer performs parameter sweep analysis
type SensitivityAnalyzer struct {
	engine *Engine
}

// NewSensitivityAnalyzer creates a new sensitivity analyzer
func NewSensitivityAnalyzer(engine *Engine) *SensitivityAnalyzer {
	return &SensitivityAnalyzer{engine: engine}
}

// Sweep varies one input field across [MinValue, MaxValue] in Steps evenly
// spaced values and calculates each point in parallel.
func (sa *SensitivityAnalyzer) Sweep(ctx context.Context, base domain.ScenarioInput, param domain.SweepParameter) (*domain.SweepResult, error) {
	if err := validateSweepParameter(param); err != nil {
		return nil, err
	}

	values := generateParameterValues(param)
	inputs := make([]domain.ScenarioInput, len(values))
	for i, v := range values {
		inputs[i] = modifyInputParameter(base, param.Name, v)
	}

	baseBreakdown := sa.engine.CalculateTax(base)
	breakdowns, err := sa.engine.CalculateBatch(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep %s: %w", param.Name, err)
	}

	result := &domain.SweepResult{
		Parameter: param,
		Base:      baseBreakdown,
		Points:    make([]domain.SweepPoint, len(values)),
	}
	for i, b := range breakdowns {
		point := domain.SweepPoint{
			Value:         values[i],
			Breakdown:     b,
			TaxDelta:      b.TotalTax.Sub(baseBreakdown.TotalTax),
			AfterTaxDelta: b.AfterTaxIncome.Sub(baseBreakdown.AfterTaxIncome),
		}
		if i > 0 {
			moved := values[i].Sub(values[i-1])
			if !moved.IsZero() {
				point.MarginalSaving = breakdowns[i-1].TotalTax.Sub(b.TotalTax).Div(moved).Round(4)
			}
		}
		result.Points[i] = point
	}

	return result, nil
}

func validateSweepParameter(param domain.SweepParameter) error {
	known := false
	for _, name := range domain.SweepParameters {
		if name == param.Name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown sweep parameter %q", param.Name)
	}
	if param.MinValue.IsNegative() {
		return fmt.Errorf("sweep %s: min value cannot be negative", param.Name)
	}
	if param.MaxValue.LessThan(param.MinValue) {
		return fmt.Errorf("sweep %s: max value %s is below min value %s", param.Name, param.MaxValue, param.MinValue)
	}
	if param.Steps < 1 {
		return fmt.Errorf("sweep %s: steps must be at least 1", param.Name)
	}
	return nil
}

// generateParameterValues generates rounded values for a parameter sweep
func generateParameterValues(param domain.SweepParameter) []decimal.Decimal {
	if param.Steps <= 1 {
		return []decimal.Decimal{param.MinValue}
	}

	values := make([]decimal.Decimal, 0, param.Steps)
	stepSize := param.MaxValue.Sub(param.MinValue).Div(decimal.NewFromInt(int64(param.Steps - 1)))
	for i := 0; i < param.Steps; i++ {
		values = append(values, roundDollar(param.MinValue.Add(stepSize.Mul(decimal.NewFromInt(int64(i))))))
	}
	return values
}

// modifyInputParameter returns a copy of input with one field replaced
func modifyInputParameter(input domain.ScenarioInput, name string, value decimal.Decimal) domain.ScenarioInput {
	out := input
	switch name {
	case domain.SweepRRSPContribution:
		out.RRSPContribution = value
	case domain.SweepFreelanceExpenses:
		out.FreelanceExpenses = value
	case domain.SweepEmploymentIncome:
		out.EmploymentIncome = value
	case domain.SweepRentalExpenses:
		out.RentalExpenses = value
	}
	return out
}
