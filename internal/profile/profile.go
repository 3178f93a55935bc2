// Package profile holds the household financial profile collected by the
// onboarding flow and converts it into tax engine inputs.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AccountType identifies a savings account vehicle
type AccountType string

const (
	AccountTFSA          AccountType = "CELI"
	AccountRRSP          AccountType = "REER"
	AccountLockedIn      AccountType = "CRI"
	AccountFHSA          AccountType = "FHSA"
	AccountNonRegistered AccountType = "NON_REGISTERED"
	AccountCrypto        AccountType = "CRYPTO"
)

// RealEstateType distinguishes a home from an investment property
type RealEstateType string

const (
	PrimaryResidence RealEstateType = "PRIMARY_RESIDENCE"
	RentalProperty   RealEstateType = "RENTAL"
)

// EmploymentIncome describes salaried income
type EmploymentIncome struct {
	GrossAnnualSalary decimal.Decimal     `yaml:"gross_annual_salary" json:"grossAnnualSalary"`
	EmployerName      string              `yaml:"employer_name" json:"employerName"`
	Province          domain.Jurisdiction `yaml:"province" json:"province"`
}

// FreelanceExpenses are the itemised deductible business expenses
type FreelanceExpenses struct {
	HomeOffice bool            `yaml:"home_office" json:"homeOffice"`
	Equipment  decimal.Decimal `yaml:"equipment" json:"equipment"`
	Software   decimal.Decimal `yaml:"software" json:"software"`
	Vehicle    decimal.Decimal `yaml:"vehicle" json:"vehicle"`
	Phone      decimal.Decimal `yaml:"phone" json:"phone"`
	Other      decimal.Decimal `yaml:"other" json:"other"`
}

// FreelanceIncome describes self-employment revenue
type FreelanceIncome struct {
	EstimatedAnnualRevenue decimal.Decimal   `yaml:"estimated_annual_revenue" json:"estimatedAnnualRevenue"`
	SalesTaxRegistered     bool              `yaml:"sales_tax_registered" json:"hasGSTQSTRegistration"`
	DeductibleExpenses     FreelanceExpenses `yaml:"deductible_expenses" json:"deductibleExpenses"`
}

// RentalIncome describes rental units and their yearly costs
type RentalIncome struct {
	Units                  int             `yaml:"units" json:"units"`
	MonthlyRentPerUnit     decimal.Decimal `yaml:"monthly_rent_per_unit" json:"monthlyRentPerUnit"`
	MortgageInterestAnnual decimal.Decimal `yaml:"mortgage_interest_annual" json:"mortgageInterestAnnual"`
	PropertyTaxAnnual      decimal.Decimal `yaml:"property_tax_annual" json:"propertyTaxAnnual"`
	InsuranceAnnual        decimal.Decimal `yaml:"insurance_annual" json:"insuranceAnnual"`
	MaintenanceAnnual      decimal.Decimal `yaml:"maintenance_annual" json:"maintenanceAnnual"`
	OwnerOccupied          bool            `yaml:"owner_occupied" json:"isOwnerOccupied"`
}

// Property converts the rental figures for the rental income calculation
func (r RentalIncome) Property() calculation.RentalProperty {
	return calculation.RentalProperty{
		Units:             r.Units,
		MonthlyRent:       r.MonthlyRentPerUnit,
		MortgageInterest:  r.MortgageInterestAnnual,
		PropertyTax:       r.PropertyTaxAnnual,
		Insurance:         r.InsuranceAnnual,
		MaintenanceBudget: r.MaintenanceAnnual,
	}
}

// Income groups every income source. Freelance and rental are optional.
type Income struct {
	Employment *EmploymentIncome `yaml:"employment" json:"employment"`
	Freelance  *FreelanceIncome  `yaml:"freelance,omitempty" json:"freelance,omitempty"`
	Rental     *RentalIncome     `yaml:"rental,omitempty" json:"rental,omitempty"`
}

// Account is one savings account
type Account struct {
	ID               string           `yaml:"id" json:"id"`
	Type             AccountType      `yaml:"type" json:"type"`
	CurrentBalance   decimal.Decimal  `yaml:"current_balance" json:"currentBalance"`
	ContributionRoom *decimal.Decimal `yaml:"contribution_room,omitempty" json:"contributionRoom,omitempty"`
	Institution      string           `yaml:"institution,omitempty" json:"institution,omitempty"`
}

// RealEstate is one owned property
type RealEstate struct {
	ID              string          `yaml:"id" json:"id"`
	Type            RealEstateType  `yaml:"type" json:"type"`
	EstimatedValue  decimal.Decimal `yaml:"estimated_value" json:"estimatedValue"`
	MortgageBalance decimal.Decimal `yaml:"mortgage_balance" json:"mortgageBalance"`
	MortgageRate    decimal.Decimal `yaml:"mortgage_rate" json:"mortgageRate"`
	OwnerOccupied   bool            `yaml:"owner_occupied" json:"isOwnerOccupied"`
}

// Equity returns value minus the mortgage balance
func (r RealEstate) Equity() decimal.Decimal {
	return r.EstimatedValue.Sub(r.MortgageBalance)
}

// LifeEvent is a planned expense
type LifeEvent struct {
	Type          string          `yaml:"type" json:"type"`
	EstimatedYear int             `yaml:"estimated_year" json:"estimatedYear"`
	EstimatedCost decimal.Decimal `yaml:"estimated_cost" json:"estimatedCost"`
	Priority      string          `yaml:"priority" json:"priority"`
	Label         string          `yaml:"label" json:"label"`
}

// MonthlyBudget is the household's monthly spending
type MonthlyBudget struct {
	FixedExpenses    decimal.Decimal `yaml:"fixed_expenses" json:"fixedExpenses"`
	VariableExpenses decimal.Decimal `yaml:"variable_expenses" json:"variableExpenses"`
	SportsHobbies    decimal.Decimal `yaml:"sports_hobbies" json:"sportsHobbies"`
	Travel           decimal.Decimal `yaml:"travel" json:"travel"`
	PetCare          decimal.Decimal `yaml:"pet_care" json:"petCare"`
	Other            decimal.Decimal `yaml:"other" json:"other"`
}

// UserProfile is the complete household profile
type UserProfile struct {
	ID           string              `yaml:"id" json:"id"`
	FirstName    string              `yaml:"first_name" json:"firstName"`
	Age          int                 `yaml:"age" json:"age"`
	Province     domain.Jurisdiction `yaml:"province" json:"province"`
	FilingStatus domain.FilingStatus `yaml:"filing_status" json:"filingStatus"`

	Income        Income        `yaml:"income" json:"income"`
	Accounts      []Account     `yaml:"accounts" json:"accounts"`
	RealEstate    []RealEstate  `yaml:"real_estate" json:"realEstate"`
	MonthlyBudget MonthlyBudget `yaml:"monthly_budget" json:"monthlyBudget"`

	LifeEvents       []LifeEvent      `yaml:"life_events" json:"lifeEvents"`
	HasPartner       bool             `yaml:"has_partner" json:"hasPartner"`
	PartnerIncome    *decimal.Decimal `yaml:"partner_income,omitempty" json:"partnerIncome,omitempty"`
	NumberOfChildren int              `yaml:"number_of_children" json:"numberOfChildren"`
	PlannedChildren  int              `yaml:"planned_children" json:"plannedChildren"`

	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updatedAt"`
}

// LoadFromFile reads a profile from a YAML or JSON file and normalises it
func LoadFromFile(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var p UserProfile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", filepath.Ext(path))
	}

	return Normalize(&p, time.Now())
}

// Normalize fills defaults on a partially completed profile. A profile
// without a first name or employment section cannot be used.
func Normalize(p *UserProfile, now time.Time) (*UserProfile, error) {
	if p == nil || p.FirstName == "" {
		return nil, fmt.Errorf("profile is missing a first name")
	}
	if p.Income.Employment == nil {
		return nil, fmt.Errorf("profile is missing employment income")
	}

	out := *p
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.Province == "" {
		out.Province = domain.JurisdictionQC
	}
	out.Province = domain.ParseJurisdiction(string(out.Province))
	if out.FilingStatus == "" {
		out.FilingStatus = domain.FilingSingle
	}
	if out.Accounts == nil {
		out.Accounts = []Account{}
	}
	if out.RealEstate == nil {
		out.RealEstate = []RealEstate{}
	}
	if out.LifeEvents == nil {
		out.LifeEvents = []LifeEvent{}
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now.UTC()
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now.UTC()
	}
	return &out, nil
}

// Validate checks the ranges the onboarding form enforces
func (p *UserProfile) Validate() error {
	if p.FirstName == "" {
		return fmt.Errorf("first name is required")
	}
	if p.Age < 18 || p.Age > 100 {
		return fmt.Errorf("age must be between 18 and 100")
	}
	if !p.Province.Valid() {
		return fmt.Errorf("unknown province %q", p.Province)
	}
	if !p.FilingStatus.Valid() {
		return fmt.Errorf("unknown filing status %q", p.FilingStatus)
	}
	if p.Income.Employment == nil {
		return fmt.Errorf("employment income is required")
	}
	if p.Income.Employment.GrossAnnualSalary.IsNegative() {
		return fmt.Errorf("gross annual salary cannot be negative")
	}
	if p.Income.Freelance != nil && p.Income.Freelance.EstimatedAnnualRevenue.IsNegative() {
		return fmt.Errorf("freelance revenue cannot be negative")
	}
	if r := p.Income.Rental; r != nil {
		if r.Units < 1 {
			return fmt.Errorf("rental income needs at least one unit")
		}
		for _, v := range []decimal.Decimal{r.MonthlyRentPerUnit, r.MortgageInterestAnnual, r.PropertyTaxAnnual, r.InsuranceAnnual, r.MaintenanceAnnual} {
			if v.IsNegative() {
				return fmt.Errorf("rental amounts cannot be negative")
			}
		}
	}
	for _, a := range p.Accounts {
		if a.CurrentBalance.IsNegative() {
			return fmt.Errorf("account %s: balance cannot be negative", a.ID)
		}
	}
	for _, r := range p.RealEstate {
		if r.EstimatedValue.IsNegative() || r.MortgageBalance.IsNegative() || r.MortgageRate.IsNegative() {
			return fmt.Errorf("property %s: amounts cannot be negative", r.ID)
		}
	}
	if p.NumberOfChildren < 0 || p.PlannedChildren < 0 {
		return fmt.Errorf("number of children cannot be negative")
	}
	return nil
}

// ToScenarioInput builds the tax engine input from the profile. The RRSP
// contribution starts at zero; what-if tools vary it from there.
func (p *UserProfile) ToScenarioInput() domain.ScenarioInput {
	input := domain.ScenarioInput{
		Jurisdiction: p.Province,
		FilingStatus: p.FilingStatus,
		Age:          p.Age,
	}
	if p.Income.Employment != nil {
		input.EmploymentIncome = p.Income.Employment.GrossAnnualSalary
	}
	if f := p.Income.Freelance; f != nil {
		e := f.DeductibleExpenses
		_, total := calculation.FreelanceNetIncome(f.EstimatedAnnualRevenue, e.Equipment, e.Software, e.Vehicle, e.Phone, e.Other)
		input.FreelanceIncome = f.EstimatedAnnualRevenue
		input.FreelanceExpenses = total
	}
	if r := p.Income.Rental; r != nil {
		property := r.Property()
		input.RentalGrossIncome = property.GrossIncome()
		input.RentalExpenses = property.Expenses()
	}
	return input
}

// TotalAnnualIncome returns employment plus freelance revenue plus gross rent
func (p *UserProfile) TotalAnnualIncome() decimal.Decimal {
	var total decimal.Decimal
	if p.Income.Employment != nil {
		total = total.Add(p.Income.Employment.GrossAnnualSalary)
	}
	if p.Income.Freelance != nil {
		total = total.Add(p.Income.Freelance.EstimatedAnnualRevenue)
	}
	if p.Income.Rental != nil {
		total = total.Add(p.Income.Rental.Property().GrossIncome())
	}
	return total
}

// TotalRegisteredAssets sums the balances of every account
func (p *UserProfile) TotalRegisteredAssets() decimal.Decimal {
	var total decimal.Decimal
	for _, a := range p.Accounts {
		total = total.Add(a.CurrentBalance)
	}
	return total
}

// TotalRealEstateEquity sums value minus mortgage over every property
func (p *UserProfile) TotalRealEstateEquity() decimal.Decimal {
	var total decimal.Decimal
	for _, r := range p.RealEstate {
		total = total.Add(r.Equity())
	}
	return total
}

// NetWorthEstimate is account balances plus real estate equity
func (p *UserProfile) NetWorthEstimate() decimal.Decimal {
	return p.TotalRegisteredAssets().Add(p.TotalRealEstateEquity())
}

// MonthlySpending sums the monthly budget lines
func (b MonthlyBudget) MonthlySpending() decimal.Decimal {
	return b.FixedExpenses.Add(b.VariableExpenses).Add(b.SportsHobbies).Add(b.Travel).Add(b.PetCare).Add(b.Other)
}
