package calculation

import (
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ProvincialTaxCalculator handles provincial tax, the federal abatement and
// the provincial pension plan for one jurisdiction. A calculator built for a
// jurisdiction without rules returns zero for everything.
type ProvincialTaxCalculator struct {
	Jurisdiction domain.Jurisdiction
	Rules        domain.JurisdictionRules
	Modeled      bool
}

// NewProvincialTaxCalculator creates a calculator from a rule table entry
func NewProvincialTaxCalculator(j domain.Jurisdiction, rules domain.JurisdictionRules, modeled bool) *ProvincialTaxCalculator {
	return &ProvincialTaxCalculator{Jurisdiction: j, Rules: rules, Modeled: modeled}
}

// CalculateTax calculates provincial tax before credits
func (ptc *ProvincialTaxCalculator) CalculateTax(taxableIncome decimal.Decimal) decimal.Decimal {
	if !ptc.Modeled {
		return decimal.Zero
	}
	return BracketTax(taxableIncome, ptc.Rules.Brackets)
}

// ApplyBasicPersonalCredit reduces tax by the provincial basic personal credit
func (ptc *ProvincialTaxCalculator) ApplyBasicPersonalCredit(tax decimal.Decimal) decimal.Decimal {
	if !ptc.Modeled {
		return decimal.Zero
	}
	return applyCredit(tax, ptc.Rules.BasicPersonalAmount, ptc.Rules.CreditRate)
}

// BasicPersonalAmount returns the provincial basic personal amount, zero when
// the jurisdiction is not modelled
func (ptc *ProvincialTaxCalculator) BasicPersonalAmount() decimal.Decimal {
	if !ptc.Modeled {
		return decimal.Zero
	}
	return ptc.Rules.BasicPersonalAmount
}

// MarginalRate returns the provincial marginal rate at taxableIncome
func (ptc *ProvincialTaxCalculator) MarginalRate(taxableIncome decimal.Decimal) decimal.Decimal {
	if !ptc.Modeled {
		return decimal.Zero
	}
	return MarginalRate(taxableIncome, ptc.Rules.Brackets)
}

// BracketFloor returns the lower bound of the provincial bracket at
// taxableIncome, zero when the jurisdiction is not modelled
func (ptc *ProvincialTaxCalculator) BracketFloor(taxableIncome decimal.Decimal) decimal.Decimal {
	if !ptc.Modeled {
		return decimal.Zero
	}
	return BracketFloor(taxableIncome, ptc.Rules.Brackets)
}

// HasAbatement reports whether residents receive a federal abatement
func (ptc *ProvincialTaxCalculator) HasAbatement() bool {
	return ptc.Modeled && ptc.Rules.Abatement != nil
}

// Abatement calculates the reduction of federal tax granted to residents.
// It is not a provincial tax; it is subtracted from federal tax after credits.
func (ptc *ProvincialTaxCalculator) Abatement(federalTaxAfterCredits decimal.Decimal) decimal.Decimal {
	if !ptc.HasAbatement() {
		return decimal.Zero
	}
	return roundDollar(federalTaxAfterCredits.Mul(ptc.Rules.Abatement.Rate))
}

// EffectiveFederalRate folds the abatement into a federal marginal rate
func (ptc *ProvincialTaxCalculator) EffectiveFederalRate(federalRate decimal.Decimal) decimal.Decimal {
	if !ptc.HasAbatement() {
		return federalRate
	}
	return federalRate.Mul(decimal.NewFromInt(1).Sub(ptc.Rules.Abatement.Rate))
}

// PensionPlanContribution calculates the provincial pension plan contribution
// on employment income
func (ptc *ProvincialTaxCalculator) PensionPlanContribution(employmentIncome decimal.Decimal) decimal.Decimal {
	if !ptc.Modeled || ptc.Rules.PensionPlan == nil {
		return decimal.Zero
	}
	pp := ptc.Rules.PensionPlan

	pensionable := decimal.Min(employmentIncome, pp.MaxPensionableEarnings).Sub(pp.BasicExemption)
	if pensionable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.Min(roundDollar(pensionable.Mul(pp.ContributionRate)), pp.MaxContribution)
}
