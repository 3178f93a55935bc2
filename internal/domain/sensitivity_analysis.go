package domain

import (
	"github.com/shopspring/decimal"
)

// SweepParameter names an input field to vary across a range
type SweepParameter struct {
	Name        string          `yaml:"name" json:"name"`
	MinValue    decimal.Decimal `yaml:"min_value" json:"minValue"`
	MaxValue    decimal.Decimal `yaml:"max_value" json:"maxValue"`
	Steps       int             `yaml:"steps" json:"steps"`
	Description string          `yaml:"description" json:"description"`
}

// Sweepable input fields
const (
	SweepRRSPContribution  = "rrsp_contribution"
	SweepFreelanceExpenses = "freelance_expenses"
	SweepEmploymentIncome  = "employment_income"
	SweepRentalExpenses    = "rental_expenses"
)

// SweepParameters lists the fields a sweep may vary
var SweepParameters = []string{SweepRRSPContribution, SweepFreelanceExpenses, SweepEmploymentIncome, SweepRentalExpenses}

// SweepPoint is the breakdown for one parameter value
type SweepPoint struct {
	Value          decimal.Decimal `json:"value"`
	Breakdown      TaxBreakdown    `json:"breakdown"`
	TaxDelta       decimal.Decimal `json:"taxDelta"`       // vs base, negative means less tax
	AfterTaxDelta  decimal.Decimal `json:"afterTaxDelta"`  // vs base
	MarginalSaving decimal.Decimal `json:"marginalSaving"` // tax saved per dollar moved vs previous point
}

// SweepResult is the outcome of a one-parameter sweep
type SweepResult struct {
	Parameter SweepParameter `json:"parameter"`
	Base      TaxBreakdown   `json:"base"`
	Points    []SweepPoint   `json:"points"`
}

// LowestTax returns the point with the smallest total tax; ties keep the
// earliest point.
func (r *SweepResult) LowestTax() *SweepPoint {
	var best *SweepPoint
	for i := range r.Points {
		if best == nil || r.Points[i].Breakdown.TotalTax.LessThan(best.Breakdown.TotalTax) {
			best = &r.Points[i]
		}
	}
	return best
}
