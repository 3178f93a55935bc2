package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func dp(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func validBrackets() []TaxBracket {
	return []TaxBracket{
		{Min: d(0), Max: dp(50000), Rate: decimal.RequireFromString("0.15")},
		{Min: d(50000), Max: dp(100000), Rate: decimal.RequireFromString("0.2")},
		{Min: d(100000), Rate: decimal.RequireFromString("0.3")},
	}
}

func TestValidateBrackets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b []TaxBracket) []TaxBracket
		msg    string
	}{
		{"valid", func(b []TaxBracket) []TaxBracket { return b }, ""},
		{"empty", func(b []TaxBracket) []TaxBracket { return nil }, "at least one bracket"},
		{"first min not zero", func(b []TaxBracket) []TaxBracket { b[0].Min = d(10); return b }, "first bracket must start at 0"},
		{"rate of one", func(b []TaxBracket) []TaxBracket { b[2].Rate = d(1); return b }, "outside [0,1)"},
		{"negative rate", func(b []TaxBracket) []TaxBracket { b[1].Rate = d(-1); return b }, "outside [0,1)"},
		{"bounded top", func(b []TaxBracket) []TaxBracket { b[2].Max = dp(200000); return b }, "last bracket must be unbounded"},
		{"unbounded middle", func(b []TaxBracket) []TaxBracket { b[1].Max = nil; return b }, "only the last bracket may be unbounded"},
		{"gap", func(b []TaxBracket) []TaxBracket { b[1].Min = d(60000); return b }, "does not meet next min"},
		{"empty band", func(b []TaxBracket) []TaxBracket { b[1].Max = dp(50000); return b }, "must exceed min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBrackets(tt.mutate(validBrackets()))
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRuleSet_Validate(t *testing.T) {
	rules := &RuleSet{
		Metadata: RuleSetMetadata{FiscalYear: 2026},
		Federal:  FederalRules{Brackets: validBrackets()},
		Jurisdictions: map[Jurisdiction]JurisdictionRules{
			JurisdictionQC: {Brackets: validBrackets(), Abatement: &AbatementRules{Rate: decimal.RequireFromString("0.165")}},
		},
	}
	assert.NoError(t, rules.Validate())

	rules.Jurisdictions[JurisdictionQC] = JurisdictionRules{Brackets: validBrackets(), Abatement: &AbatementRules{Rate: d(1)}}
	assert.ErrorContains(t, rules.Validate(), "abatement rate")

	rules.Jurisdictions = map[Jurisdiction]JurisdictionRules{"XX": {Brackets: validBrackets()}}
	assert.ErrorContains(t, rules.Validate(), `unknown jurisdiction code "XX"`)

	rules.Jurisdictions = nil
	rules.Federal.RRSP.MaxContribution = d(-1)
	assert.ErrorContains(t, rules.Validate(), "rrsp limits cannot be negative")

	rules.Metadata.FiscalYear = 0
	assert.ErrorContains(t, rules.Validate(), "fiscal year is required")
}

func TestRuleSet_Jurisdiction(t *testing.T) {
	var nilRules *RuleSet
	_, ok := nilRules.Jurisdiction(JurisdictionQC)
	assert.False(t, ok)

	rules := &RuleSet{Jurisdictions: map[Jurisdiction]JurisdictionRules{JurisdictionQC: {Name: "Quebec"}}}
	qc, ok := rules.Jurisdiction(JurisdictionQC)
	assert.True(t, ok)
	assert.Equal(t, "Quebec", qc.Name)
}

func TestRuleSetMetadata_Expired(t *testing.T) {
	now := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, RuleSetMetadata{ValidUntil: "2026-12-31"}.Expired(now))
	assert.False(t, RuleSetMetadata{ValidUntil: "2027-12-31"}.Expired(now))
	assert.False(t, RuleSetMetadata{}.Expired(now))
	assert.False(t, RuleSetMetadata{ValidUntil: "someday"}.Expired(now))
}

func TestJurisdiction(t *testing.T) {
	assert.Equal(t, JurisdictionQC, ParseJurisdiction(" qc "))
	assert.True(t, JurisdictionOther.Valid())
	assert.False(t, Jurisdiction("NY").Valid())
	assert.True(t, FilingCommonLaw.Valid())
	assert.False(t, FilingStatus("single").Valid(), "filing status codes are upper case")
}

func TestScenarioOverrides_Apply(t *testing.T) {
	base := ScenarioInput{EmploymentIncome: d(90000), RRSPContribution: d(1000), Jurisdiction: JurisdictionQC, Age: 30}
	on := JurisdictionON

	out := ScenarioOverrides{RRSPContribution: dp(5000), Jurisdiction: &on}.Apply(base)
	assert.True(t, out.RRSPContribution.Equal(d(5000)))
	assert.Equal(t, JurisdictionON, out.Jurisdiction)
	assert.True(t, out.EmploymentIncome.Equal(d(90000)))
	assert.Equal(t, 30, out.Age)
	assert.True(t, base.RRSPContribution.Equal(d(1000)), "base is not modified")

	assert.Equal(t, base, ScenarioOverrides{}.Apply(base))
}

func TestConfiguration_FindScenario(t *testing.T) {
	config := &Configuration{
		Household: ScenarioInput{EmploymentIncome: d(50000)},
		Scenarios: []Scenario{{Name: "raise", Overrides: ScenarioOverrides{EmploymentIncome: dp(60000)}}},
	}

	baseline, ok := config.FindScenario("")
	assert.True(t, ok)
	assert.True(t, baseline.EmploymentIncome.Equal(d(50000)))

	baseline, ok = config.FindScenario("BASELINE")
	assert.True(t, ok)
	assert.True(t, baseline.EmploymentIncome.Equal(d(50000)))

	raise, ok := config.FindScenario("raise")
	assert.True(t, ok)
	assert.True(t, raise.EmploymentIncome.Equal(d(60000)))

	_, ok = config.FindScenario("missing")
	assert.False(t, ok)
}

func TestTaxBreakdown_Helpers(t *testing.T) {
	b := TaxBreakdown{
		FederalTax:              d(15563),
		ProvincialTax:           d(18004),
		PensionPlanContribution: d(3764),
		EIPremium:               d(1090),
		RRSPContributionRoom:    d(19782),
		RRSPDeduction:           d(10000),
	}
	assert.True(t, b.PayrollContributions().Equal(d(4854)))
	assert.True(t, b.IncomeTax().Equal(d(33567)))
	assert.True(t, b.RemainingRRSPRoom().Equal(d(9782)))

	b.RRSPDeduction = d(25000)
	assert.True(t, b.RemainingRRSPRoom().IsZero())
}

func TestScenarioResults_Baseline(t *testing.T) {
	var empty *ScenarioResults
	assert.Nil(t, empty.Baseline())
	assert.Nil(t, (&ScenarioResults{}).Baseline())

	results := &ScenarioResults{Results: []ScenarioResult{{Label: "Baseline"}, {Label: "other"}}}
	assert.Equal(t, "Baseline", results.Baseline().Label)
}

func TestSweepResult_LowestTax(t *testing.T) {
	r := &SweepResult{}
	assert.Nil(t, r.LowestTax())

	r.Points = []SweepPoint{
		{Value: d(0), Breakdown: TaxBreakdown{TotalTax: d(100)}},
		{Value: d(1), Breakdown: TaxBreakdown{TotalTax: d(80)}},
		{Value: d(2), Breakdown: TaxBreakdown{TotalTax: d(80)}},
	}
	assert.True(t, r.LowestTax().Value.Equal(d(1)), "ties keep the earliest point")
}
