package transform

import (
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SetRRSPContribution replaces the requested RRSP contribution. The engine
// caps it at the contribution room, so amounts above room are allowed.
type SetRRSPContribution struct {
	Amount decimal.Decimal
}

func (s *SetRRSPContribution) Name() string {
	return "set_rrsp"
}

func (s *SetRRSPContribution) Description() string {
	return fmt.Sprintf("Set RRSP contribution to $%s", s.Amount.StringFixed(0))
}

func (s *SetRRSPContribution) Validate(base domain.ScenarioInput) error {
	if s.Amount.IsNegative() {
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("amount must be non-negative, got %s", s.Amount), nil)
	}
	return nil
}

func (s *SetRRSPContribution) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.RRSPContribution = s.Amount
	return modified, nil
}

// AddRRSPContribution raises (or lowers) the RRSP contribution by Delta.
// The result may not go below zero.
type AddRRSPContribution struct {
	Delta decimal.Decimal
}

func (a *AddRRSPContribution) Name() string {
	return "add_rrsp"
}

func (a *AddRRSPContribution) Description() string {
	if a.Delta.IsNegative() {
		return fmt.Sprintf("Reduce RRSP contribution by $%s", a.Delta.Neg().StringFixed(0))
	}
	return fmt.Sprintf("Increase RRSP contribution by $%s", a.Delta.StringFixed(0))
}

func (a *AddRRSPContribution) Validate(base domain.ScenarioInput) error {
	if base.RRSPContribution.Add(a.Delta).IsNegative() {
		return NewTransformError(a.Name(), "validate",
			fmt.Sprintf("contribution %s plus %s would be negative", base.RRSPContribution, a.Delta), nil)
	}
	return nil
}

func (a *AddRRSPContribution) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.RRSPContribution = base.RRSPContribution.Add(a.Delta)
	return modified, nil
}

// MaxRRSPContribution sets the contribution to the full room generated by
// the input's earned income under the given RRSP rules.
type MaxRRSPContribution struct {
	Rules domain.RRSPRules
}

func (m *MaxRRSPContribution) Name() string {
	return "max_rrsp"
}

func (m *MaxRRSPContribution) Description() string {
	return "Contribute the full RRSP room"
}

func (m *MaxRRSPContribution) Validate(base domain.ScenarioInput) error {
	if m.Rules.LimitRate.IsZero() && m.Rules.MaxContribution.IsZero() {
		return NewTransformError(m.Name(), "validate", "RRSP rules are not configured", nil)
	}
	return nil
}

func (m *MaxRRSPContribution) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.RRSPContribution = Room(base, m.Rules)
	return modified, nil
}

// Room returns the RRSP contribution room the input's earned income
// generates: employment plus net freelance income.
func Room(input domain.ScenarioInput, rules domain.RRSPRules) decimal.Decimal {
	netFreelance, _ := calculation.FreelanceNetIncome(input.FreelanceIncome, input.FreelanceExpenses)
	earned := input.EmploymentIncome.Add(netFreelance)
	return calculation.NewDeductionCalculator(rules).ContributionRoom(earned)
}
