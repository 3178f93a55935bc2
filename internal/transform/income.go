package transform

import (
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SetFreelanceExpenses replaces the deductible freelance expenses
type SetFreelanceExpenses struct {
	Amount decimal.Decimal
}

func (s *SetFreelanceExpenses) Name() string {
	return "set_freelance_expenses"
}

func (s *SetFreelanceExpenses) Description() string {
	return fmt.Sprintf("Set freelance expenses to $%s", s.Amount.StringFixed(0))
}

func (s *SetFreelanceExpenses) Validate(base domain.ScenarioInput) error {
	if s.Amount.IsNegative() {
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("amount must be non-negative, got %s", s.Amount), nil)
	}
	return nil
}

func (s *SetFreelanceExpenses) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.FreelanceExpenses = s.Amount
	return modified, nil
}

// AddFreelanceExpenses claims Delta more (or less) in freelance expenses
type AddFreelanceExpenses struct {
	Delta decimal.Decimal
}

func (a *AddFreelanceExpenses) Name() string {
	return "add_freelance_expenses"
}

func (a *AddFreelanceExpenses) Description() string {
	if a.Delta.IsNegative() {
		return fmt.Sprintf("Claim $%s less in freelance expenses", a.Delta.Neg().StringFixed(0))
	}
	return fmt.Sprintf("Claim $%s more in freelance expenses", a.Delta.StringFixed(0))
}

func (a *AddFreelanceExpenses) Validate(base domain.ScenarioInput) error {
	if base.FreelanceExpenses.Add(a.Delta).IsNegative() {
		return NewTransformError(a.Name(), "validate",
			fmt.Sprintf("expenses %s plus %s would be negative", base.FreelanceExpenses, a.Delta), nil)
	}
	return nil
}

func (a *AddFreelanceExpenses) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.FreelanceExpenses = base.FreelanceExpenses.Add(a.Delta)
	return modified, nil
}

// SetEmploymentIncome replaces the gross employment income
type SetEmploymentIncome struct {
	Amount decimal.Decimal
}

func (s *SetEmploymentIncome) Name() string {
	return "set_employment_income"
}

func (s *SetEmploymentIncome) Description() string {
	return fmt.Sprintf("Set employment income to $%s", s.Amount.StringFixed(0))
}

func (s *SetEmploymentIncome) Validate(base domain.ScenarioInput) error {
	if s.Amount.IsNegative() {
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("amount must be non-negative, got %s", s.Amount), nil)
	}
	return nil
}

func (s *SetEmploymentIncome) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.EmploymentIncome = s.Amount
	return modified, nil
}

// SetJurisdiction moves the household to another province
type SetJurisdiction struct {
	Jurisdiction domain.Jurisdiction
}

func (s *SetJurisdiction) Name() string {
	return "set_jurisdiction"
}

func (s *SetJurisdiction) Description() string {
	return fmt.Sprintf("Move to %s", s.Jurisdiction)
}

func (s *SetJurisdiction) Validate(base domain.ScenarioInput) error {
	if !s.Jurisdiction.Valid() {
		return NewTransformError(s.Name(), "validate", fmt.Sprintf("unknown jurisdiction %q", s.Jurisdiction), nil)
	}
	return nil
}

func (s *SetJurisdiction) Apply(base domain.ScenarioInput) (domain.ScenarioInput, error) {
	modified := base
	modified.Jurisdiction = s.Jurisdiction
	return modified, nil
}
