package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBreakdown is the complete result of one tax calculation. It is a value:
// every field is derived from a ScenarioInput and a RuleSet.
type TaxBreakdown struct {
	FiscalYear   int          `json:"fiscalYear"`
	Jurisdiction Jurisdiction `json:"province"`

	// Income
	EmploymentIncome decimal.Decimal `json:"employmentIncome"`
	FreelanceIncome  decimal.Decimal `json:"freelanceIncome"` // net of expenses, floored at 0
	RentalIncome     decimal.Decimal `json:"rentalIncome"`    // net, negative for a rental loss
	TotalGrossIncome decimal.Decimal `json:"totalGrossIncome"`

	// Deductions
	RRSPDeduction     decimal.Decimal `json:"rrspDeduction"`
	FreelanceExpenses decimal.Decimal `json:"freelanceExpenses"`
	RentalExpenses    decimal.Decimal `json:"rentalExpenses"`
	UnionDues         decimal.Decimal `json:"unionDues"`
	TotalDeductions   decimal.Decimal `json:"totalDeductions"`

	TotalTaxableIncome decimal.Decimal `json:"totalTaxableIncome"`

	// Federal
	FederalTaxBeforeCredits    decimal.Decimal `json:"federalTaxBeforeCredits"`
	BasicPersonalAmountFederal decimal.Decimal `json:"basicPersonalAmountFederal"`
	FederalTax                 decimal.Decimal `json:"federalTax"`

	// Provincial
	ProvincialTaxBeforeCredits    decimal.Decimal `json:"provincialTaxBeforeCredits"`
	BasicPersonalAmountProvincial decimal.Decimal `json:"basicPersonalAmountProvincial"`
	ProvincialAbatement           decimal.Decimal `json:"provincialAbatement"`
	ProvincialTax                 decimal.Decimal `json:"provincialTax"`
	ProvincialModeled             bool            `json:"provincialModeled"` // false: no table, provincial amounts are zero

	// Payroll
	PensionPlanContribution decimal.Decimal `json:"pensionPlanContribution"`
	EIPremium               decimal.Decimal `json:"eiPremium"`

	// Totals
	TotalTax               decimal.Decimal `json:"totalTax"`
	EffectiveTaxRate       decimal.Decimal `json:"effectiveTaxRate"` // percent, two decimals
	MarginalFederalRate    decimal.Decimal `json:"marginalFederalRate"`
	MarginalProvincialRate decimal.Decimal `json:"marginalProvincialRate"`
	MarginalCombinedRate   decimal.Decimal `json:"marginalCombinedRate"`
	AfterTaxIncome         decimal.Decimal `json:"afterTaxIncome"`

	// Registered accounts
	RRSPContributionRoom  decimal.Decimal `json:"rrspContributionRoom"`
	RRSPTaxSavingsIfMaxed decimal.Decimal `json:"rrspTaxSavingsIfMaxed"`
	TFSARoom              decimal.Decimal `json:"tfsaRoom"`
}

// PayrollContributions returns pension plan plus EI
func (b TaxBreakdown) PayrollContributions() decimal.Decimal {
	return b.PensionPlanContribution.Add(b.EIPremium)
}

// IncomeTax returns federal plus provincial income tax, without payroll
func (b TaxBreakdown) IncomeTax() decimal.Decimal {
	return b.FederalTax.Add(b.ProvincialTax)
}

// RemainingRRSPRoom returns the contribution room left after the deduction
func (b TaxBreakdown) RemainingRRSPRoom() decimal.Decimal {
	return decimal.Max(decimal.Zero, b.RRSPContributionRoom.Sub(b.RRSPDeduction))
}

// ScenarioResult pairs a labelled input with its breakdown
type ScenarioResult struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Input     ScenarioInput `json:"input"`
	Breakdown TaxBreakdown  `json:"breakdown"`
}

// ScenarioResults is the output of calculating every scenario in a configuration
type ScenarioResults struct {
	FiscalYear int              `json:"fiscalYear"`
	Results    []ScenarioResult `json:"results"`
}

// Baseline returns the first result, which is always the household baseline
func (r *ScenarioResults) Baseline() *ScenarioResult {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}
