package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RuleSet contains every bracket table and constant for one fiscal year.
// It is loaded from a rules file by the config package and never mutated
// afterwards, so a single RuleSet may be shared by any number of goroutines.
type RuleSet struct {
	Metadata      RuleSetMetadata                    `yaml:"metadata" json:"metadata" toml:"metadata"`
	Federal       FederalRules                       `yaml:"federal" json:"federal" toml:"federal"`
	Jurisdictions map[Jurisdiction]JurisdictionRules `yaml:"jurisdictions" json:"jurisdictions" toml:"jurisdictions"`
}

// RuleSetMetadata contains information about the rule data
type RuleSetMetadata struct {
	FiscalYear  int    `yaml:"fiscal_year" json:"fiscalYear" toml:"fiscal_year"`
	ValidUntil  string `yaml:"valid_until" json:"validUntil" toml:"valid_until"`
	Description string `yaml:"description" json:"description" toml:"description"`
}

// Expired reports whether the rule data is past its valid_until date.
// An empty or unparseable date never expires.
func (m RuleSetMetadata) Expired(now time.Time) bool {
	if m.ValidUntil == "" {
		return false
	}
	until, err := time.Parse("2006-01-02", m.ValidUntil)
	if err != nil {
		return false
	}
	return now.After(until)
}

// FederalRules contains the federal income tax rules
type FederalRules struct {
	Brackets            []TaxBracket    `yaml:"brackets" json:"brackets" toml:"brackets"`
	BasicPersonalAmount decimal.Decimal `yaml:"basic_personal_amount" json:"basicPersonalAmount" toml:"basic_personal_amount"`
	CreditRate          decimal.Decimal `yaml:"credit_rate" json:"creditRate" toml:"credit_rate"`
	RRSP                RRSPRules       `yaml:"rrsp" json:"rrsp" toml:"rrsp"`
	TFSARoom            decimal.Decimal `yaml:"tfsa_room" json:"tfsaRoom" toml:"tfsa_room"`
	FHSA                FHSARules       `yaml:"fhsa" json:"fhsa" toml:"fhsa"`
	EI                  EIRules         `yaml:"ei" json:"ei" toml:"ei"`
}

// RRSPRules contains contribution room rules for the registered retirement savings plan
type RRSPRules struct {
	LimitRate       decimal.Decimal `yaml:"limit_rate" json:"limitRate" toml:"limit_rate"`
	MaxContribution decimal.Decimal `yaml:"max_contribution" json:"maxContribution" toml:"max_contribution"`
}

// FHSARules contains first home savings account limits
type FHSARules struct {
	AnnualLimit   decimal.Decimal `yaml:"annual_limit" json:"annualLimit" toml:"annual_limit"`
	LifetimeLimit decimal.Decimal `yaml:"lifetime_limit" json:"lifetimeLimit" toml:"lifetime_limit"`
}

// EIRules contains employment insurance premium rules
type EIRules struct {
	MaxInsurableEarnings decimal.Decimal `yaml:"max_insurable_earnings" json:"maxInsurableEarnings" toml:"max_insurable_earnings"`
	PremiumRate          decimal.Decimal `yaml:"premium_rate" json:"premiumRate" toml:"premium_rate"`
	MaxPremium           decimal.Decimal `yaml:"max_premium" json:"maxPremium" toml:"max_premium"`
}

// JurisdictionRules is one entry of the per-province rule table. Optional
// features (abatement, a provincial pension plan) are expressed as nil-able
// sub-rules, so adding a province is a data change.
type JurisdictionRules struct {
	Name                string            `yaml:"name" json:"name" toml:"name"`
	Brackets            []TaxBracket      `yaml:"brackets" json:"brackets" toml:"brackets"`
	BasicPersonalAmount decimal.Decimal   `yaml:"basic_personal_amount" json:"basicPersonalAmount" toml:"basic_personal_amount"`
	CreditRate          decimal.Decimal   `yaml:"credit_rate" json:"creditRate" toml:"credit_rate"`
	Abatement           *AbatementRules   `yaml:"abatement,omitempty" json:"abatement,omitempty" toml:"abatement,omitempty"`
	PensionPlan         *PensionPlanRules `yaml:"pension_plan,omitempty" json:"pensionPlan,omitempty" toml:"pension_plan,omitempty"`
}

// AbatementRules describes a federal tax reduction granted to residents of a
// province that runs its own tax collection.
type AbatementRules struct {
	Rate decimal.Decimal `yaml:"rate" json:"rate" toml:"rate"`
}

// PensionPlanRules contains provincial pension plan contribution rules (QPP)
type PensionPlanRules struct {
	BasicExemption         decimal.Decimal `yaml:"basic_exemption" json:"basicExemption" toml:"basic_exemption"`
	MaxPensionableEarnings decimal.Decimal `yaml:"max_pensionable_earnings" json:"maxPensionableEarnings" toml:"max_pensionable_earnings"`
	ContributionRate       decimal.Decimal `yaml:"contribution_rate" json:"contributionRate" toml:"contribution_rate"`
	MaxContribution        decimal.Decimal `yaml:"max_contribution" json:"maxContribution" toml:"max_contribution"`
}

// TaxBracket represents one marginal-rate band. A nil Max marks the
// unbounded top band.
type TaxBracket struct {
	Min  decimal.Decimal  `yaml:"min" json:"min" toml:"min"`
	Max  *decimal.Decimal `yaml:"max" json:"max" toml:"max,omitempty"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate" toml:"rate"`
}

// Unbounded reports whether the bracket has no upper limit
func (b TaxBracket) Unbounded() bool {
	return b.Max == nil
}

// Jurisdiction returns the provincial rules for j. The second value is false
// when j has no entry in the table; callers treat that as a jurisdiction with
// no provincial tax, no abatement and no provincial pension plan.
func (rs *RuleSet) Jurisdiction(j Jurisdiction) (JurisdictionRules, bool) {
	if rs == nil || rs.Jurisdictions == nil {
		return JurisdictionRules{}, false
	}
	r, ok := rs.Jurisdictions[j]
	return r, ok
}

// Validate checks the structural invariants of every bracket table
func (rs *RuleSet) Validate() error {
	if rs.Metadata.FiscalYear <= 0 {
		return fmt.Errorf("fiscal year is required")
	}
	if err := ValidateBrackets(rs.Federal.Brackets); err != nil {
		return fmt.Errorf("federal brackets: %w", err)
	}
	if rs.Federal.RRSP.LimitRate.IsNegative() || rs.Federal.RRSP.MaxContribution.IsNegative() {
		return fmt.Errorf("rrsp limits cannot be negative")
	}
	for code, j := range rs.Jurisdictions {
		if !code.Valid() {
			return fmt.Errorf("unknown jurisdiction code %q", code)
		}
		if err := ValidateBrackets(j.Brackets); err != nil {
			return fmt.Errorf("jurisdiction %s brackets: %w", code, err)
		}
		if j.Abatement != nil && (j.Abatement.Rate.IsNegative() || j.Abatement.Rate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
			return fmt.Errorf("jurisdiction %s: abatement rate must be in [0,1)", code)
		}
	}
	return nil
}

// ValidateBrackets checks that a bracket table starts at zero, is sorted,
// contiguous, ends with an unbounded band and only uses rates in [0,1).
func ValidateBrackets(brackets []TaxBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	if !brackets[0].Min.IsZero() {
		return fmt.Errorf("first bracket must start at 0, got %s", brackets[0].Min.String())
	}
	one := decimal.NewFromInt(1)
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThanOrEqual(one) {
			return fmt.Errorf("bracket %d: rate %s outside [0,1)", i, b.Rate.String())
		}
		last := i == len(brackets)-1
		if last {
			if !b.Unbounded() {
				return fmt.Errorf("last bracket must be unbounded")
			}
			continue
		}
		if b.Unbounded() {
			return fmt.Errorf("bracket %d: only the last bracket may be unbounded", i)
		}
		if b.Max.LessThanOrEqual(b.Min) {
			return fmt.Errorf("bracket %d: max %s must exceed min %s", i, b.Max.String(), b.Min.String())
		}
		if !b.Max.Equal(brackets[i+1].Min) {
			return fmt.Errorf("bracket %d: max %s does not meet next min %s", i, b.Max.String(), brackets[i+1].Min.String())
		}
	}
	return nil
}
