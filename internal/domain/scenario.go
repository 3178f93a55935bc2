package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Jurisdiction is a province code
type Jurisdiction string

const (
	JurisdictionQC    Jurisdiction = "QC"
	JurisdictionON    Jurisdiction = "ON"
	JurisdictionBC    Jurisdiction = "BC"
	JurisdictionAB    Jurisdiction = "AB"
	JurisdictionOther Jurisdiction = "OTHER"
)

// Jurisdictions lists every recognised province code
var Jurisdictions = []Jurisdiction{JurisdictionQC, JurisdictionON, JurisdictionBC, JurisdictionAB, JurisdictionOther}

// Valid reports whether j is one of the recognised codes
func (j Jurisdiction) Valid() bool {
	for _, known := range Jurisdictions {
		if j == known {
			return true
		}
	}
	return false
}

// ParseJurisdiction normalises a user supplied province code
func ParseJurisdiction(s string) Jurisdiction {
	return Jurisdiction(strings.ToUpper(strings.TrimSpace(s)))
}

// FilingStatus is the household filing status
type FilingStatus string

const (
	FilingSingle    FilingStatus = "SINGLE"
	FilingMarried   FilingStatus = "MARRIED"
	FilingCommonLaw FilingStatus = "COMMON_LAW"
)

// Valid reports whether s is a recognised filing status
func (s FilingStatus) Valid() bool {
	switch s {
	case FilingSingle, FilingMarried, FilingCommonLaw:
		return true
	}
	return false
}

// ScenarioInput is the sole input of the tax engine. Monetary fields are
// expected to be non-negative; validation happens before the engine is called.
type ScenarioInput struct {
	EmploymentIncome  decimal.Decimal `yaml:"employment_income" json:"employmentIncome"`
	FreelanceIncome   decimal.Decimal `yaml:"freelance_income" json:"freelanceIncome"`
	FreelanceExpenses decimal.Decimal `yaml:"freelance_expenses" json:"freelanceExpenses"`
	RentalGrossIncome decimal.Decimal `yaml:"rental_gross_income" json:"rentalGrossIncome"`
	RentalExpenses    decimal.Decimal `yaml:"rental_expenses" json:"rentalExpenses"`
	RRSPContribution  decimal.Decimal `yaml:"rrsp_contribution" json:"rrspContribution"`
	Jurisdiction      Jurisdiction    `yaml:"jurisdiction" json:"province"`
	FilingStatus      FilingStatus    `yaml:"filing_status" json:"filingStatus"`
	Age               int             `yaml:"age" json:"age"`
}

// ScenarioOverrides replaces selected fields of a base input. Nil fields keep
// the base value.
type ScenarioOverrides struct {
	EmploymentIncome  *decimal.Decimal `yaml:"employment_income,omitempty" json:"employmentIncome,omitempty"`
	FreelanceIncome   *decimal.Decimal `yaml:"freelance_income,omitempty" json:"freelanceIncome,omitempty"`
	FreelanceExpenses *decimal.Decimal `yaml:"freelance_expenses,omitempty" json:"freelanceExpenses,omitempty"`
	RentalGrossIncome *decimal.Decimal `yaml:"rental_gross_income,omitempty" json:"rentalGrossIncome,omitempty"`
	RentalExpenses    *decimal.Decimal `yaml:"rental_expenses,omitempty" json:"rentalExpenses,omitempty"`
	RRSPContribution  *decimal.Decimal `yaml:"rrsp_contribution,omitempty" json:"rrspContribution,omitempty"`
	Jurisdiction      *Jurisdiction    `yaml:"jurisdiction,omitempty" json:"province,omitempty"`
}

// Apply returns a copy of base with the overrides applied
func (o ScenarioOverrides) Apply(base ScenarioInput) ScenarioInput {
	out := base
	if o.EmploymentIncome != nil {
		out.EmploymentIncome = *o.EmploymentIncome
	}
	if o.FreelanceIncome != nil {
		out.FreelanceIncome = *o.FreelanceIncome
	}
	if o.FreelanceExpenses != nil {
		out.FreelanceExpenses = *o.FreelanceExpenses
	}
	if o.RentalGrossIncome != nil {
		out.RentalGrossIncome = *o.RentalGrossIncome
	}
	if o.RentalExpenses != nil {
		out.RentalExpenses = *o.RentalExpenses
	}
	if o.RRSPContribution != nil {
		out.RRSPContribution = *o.RRSPContribution
	}
	if o.Jurisdiction != nil {
		out.Jurisdiction = *o.Jurisdiction
	}
	return out
}

// Scenario is a named what-if variation of the household baseline
type Scenario struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Overrides   ScenarioOverrides `yaml:"overrides" json:"overrides"`
}

// Configuration is the top level structure of a household scenario file
type Configuration struct {
	FiscalYear int           `yaml:"fiscal_year" json:"fiscalYear"`
	Household  ScenarioInput `yaml:"household" json:"household"`
	Scenarios  []Scenario    `yaml:"scenarios" json:"scenarios"`
}

// ScenarioInputs expands the configuration into the baseline plus one input
// per scenario, in file order. The baseline is labelled "Baseline".
func (c *Configuration) ScenarioInputs() ([]string, []ScenarioInput) {
	labels := []string{"Baseline"}
	inputs := []ScenarioInput{c.Household}
	for _, s := range c.Scenarios {
		labels = append(labels, s.Name)
		inputs = append(inputs, s.Overrides.Apply(c.Household))
	}
	return labels, inputs
}

// FindScenario returns the input for a named scenario. "Baseline" (or an
// empty name) returns the household baseline.
func (c *Configuration) FindScenario(name string) (ScenarioInput, bool) {
	if name == "" || strings.EqualFold(name, "baseline") {
		return c.Household, true
	}
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s.Overrides.Apply(c.Household), true
		}
	}
	return ScenarioInput{}, false
}
