package calculation

import (
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Rounding: every intermediate monetary amount is rounded to the nearest
//    dollar (half away from zero) before it feeds the next step.
//
// 2. Credits: only the basic personal amount is modelled, applied as
//    amount * credit rate against tax before credits.
//
// 3. Provinces: only jurisdictions present in the rule set are taxed
//    provincially. Any other code pays federal tax and EI only.

// roundDollar rounds to the nearest whole dollar
func roundDollar(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// floorZero clamps negative amounts to zero
func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// BracketTax computes progressive tax on taxableIncome using a bracket table.
// Income at or below zero yields zero without touching the table.
func BracketTax(taxableIncome decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var totalTax decimal.Decimal
	for _, bracket := range brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		upper := taxableIncome
		if !bracket.Unbounded() {
			upper = decimal.Min(taxableIncome, *bracket.Max)
		}
		totalTax = totalTax.Add(upper.Sub(bracket.Min).Mul(bracket.Rate))
	}

	return floorZero(roundDollar(totalTax))
}

// MarginalRate returns the rate of the highest bracket whose Min is strictly
// below taxableIncome. At or below the first Min the first rate applies.
// An empty table has a zero marginal rate.
func MarginalRate(taxableIncome decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if len(brackets) == 0 {
		return decimal.Zero
	}
	for i := len(brackets) - 1; i >= 0; i-- {
		if taxableIncome.GreaterThan(brackets[i].Min) {
			return brackets[i].Rate
		}
	}
	return brackets[0].Rate
}

// BracketFloor returns the Min of the bracket MarginalRate would pick for
// taxableIncome. Income at or below the floor is taxed at a lower rate.
func BracketFloor(taxableIncome decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	for i := len(brackets) - 1; i >= 0; i-- {
		if taxableIncome.GreaterThan(brackets[i].Min) {
			return brackets[i].Min
		}
	}
	return decimal.Zero
}

// applyCredit subtracts amount*rate from tax, rounded and floored at zero
func applyCredit(tax, amount, rate decimal.Decimal) decimal.Decimal {
	return floorZero(roundDollar(tax.Sub(amount.Mul(rate))))
}

// FederalTaxCalculator handles federal income tax and EI calculations
type FederalTaxCalculator struct {
	Year  int
	Rules domain.FederalRules
}

// NewFederalTaxCalculator creates a federal calculator for one fiscal year
func NewFederalTaxCalculator(year int, rules domain.FederalRules) *FederalTaxCalculator {
	return &FederalTaxCalculator{Year: year, Rules: rules}
}

// CalculateTax calculates federal tax before credits
func (ftc *FederalTaxCalculator) CalculateTax(taxableIncome decimal.Decimal) decimal.Decimal {
	return BracketTax(taxableIncome, ftc.Rules.Brackets)
}

// ApplyBasicPersonalCredit reduces tax by the federal basic personal credit
func (ftc *FederalTaxCalculator) ApplyBasicPersonalCredit(tax decimal.Decimal) decimal.Decimal {
	return applyCredit(tax, ftc.Rules.BasicPersonalAmount, ftc.Rules.CreditRate)
}

// MarginalRate returns the federal marginal rate at taxableIncome
func (ftc *FederalTaxCalculator) MarginalRate(taxableIncome decimal.Decimal) decimal.Decimal {
	return MarginalRate(taxableIncome, ftc.Rules.Brackets)
}

// EIPremium calculates the employment insurance premium on employment income.
// EI does not depend on the province.
func (ftc *FederalTaxCalculator) EIPremium(employmentIncome decimal.Decimal) decimal.Decimal {
	ei := ftc.Rules.EI
	insurable := decimal.Min(employmentIncome, ei.MaxInsurableEarnings)
	premium := roundDollar(insurable.Mul(ei.PremiumRate))
	return floorZero(decimal.Min(premium, ei.MaxPremium))
}
