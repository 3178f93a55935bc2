package calculation

import (
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// DeductionCalculator handles RRSP contribution room and capped deductions
type DeductionCalculator struct {
	Rules domain.RRSPRules
}

// NewDeductionCalculator creates a deduction calculator
func NewDeductionCalculator(rules domain.RRSPRules) *DeductionCalculator {
	return &DeductionCalculator{Rules: rules}
}

// ContributionRoom calculates the RRSP room generated by earned income.
// Earned income is employment income plus net freelance income.
func (dc *DeductionCalculator) ContributionRoom(earnedIncome decimal.Decimal) decimal.Decimal {
	room := roundDollar(earnedIncome.Mul(dc.Rules.LimitRate))
	return floorZero(decimal.Min(room, dc.Rules.MaxContribution))
}

// CappedDeduction returns the part of a requested contribution that is
// actually deductible
func (dc *DeductionCalculator) CappedDeduction(requested, room decimal.Decimal) decimal.Decimal {
	return floorZero(decimal.Min(requested, room))
}

// FreelanceNetIncome sums itemised business expenses and returns the net
// income floored at zero together with the expense total.
func FreelanceNetIncome(revenue decimal.Decimal, expenses ...decimal.Decimal) (net, totalExpenses decimal.Decimal) {
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e)
	}
	return floorZero(revenue.Sub(totalExpenses)), totalExpenses
}

// RentalProperty describes the itemised yearly figures of rental units
type RentalProperty struct {
	Units             int
	MonthlyRent       decimal.Decimal // per unit
	MortgageInterest  decimal.Decimal
	PropertyTax       decimal.Decimal
	Insurance         decimal.Decimal
	MaintenanceBudget decimal.Decimal
}

// GrossIncome returns yearly rent across all units
func (rp RentalProperty) GrossIncome() decimal.Decimal {
	return rp.MonthlyRent.Mul(decimal.NewFromInt(int64(rp.Units))).Mul(decimal.NewFromInt(12))
}

// Expenses returns the yearly deductible rental expenses
func (rp RentalProperty) Expenses() decimal.Decimal {
	return rp.MortgageInterest.Add(rp.PropertyTax).Add(rp.Insurance).Add(rp.MaintenanceBudget)
}

// NetRentalIncome returns gross rent minus expenses. A loss is reported
// as a negative amount.
func NetRentalIncome(rp RentalProperty) decimal.Decimal {
	return rp.GrossIncome().Sub(rp.Expenses())
}
