package compare

import (
	"context"
	"testing"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func newTestEngine(t *testing.T) *CompareEngine {
	t.Helper()
	rules, err := config.NewRuleLoader().Load(2026)
	require.NoError(t, err)
	return NewCompareEngine(calculation.NewEngine(rules))
}

func createTestConfig() *domain.Configuration {
	return &domain.Configuration{
		FiscalYear: 2026,
		Household: domain.ScenarioInput{
			EmploymentIncome:  d("95000"),
			FreelanceIncome:   d("20000"),
			FreelanceExpenses: d("5100"),
			RentalGrossIncome: d("28800"),
			RentalExpenses:    d("21300"),
			Jurisdiction:      domain.JurisdictionQC,
			FilingStatus:      domain.FilingSingle,
			Age:               26,
		},
		Scenarios: []domain.Scenario{
			{Name: "RRSP 10k", Overrides: domain.ScenarioOverrides{RRSPContribution: dp("10000")}},
			{Name: "Max RRSP", Overrides: domain.ScenarioOverrides{RRSPContribution: dp("50000")}},
		},
	}
}

func TestCompareEngine_Compare(t *testing.T) {
	ce := newTestEngine(t)

	compSet, err := ce.Compare(context.Background(), createTestConfig(), CompareOptions{
		Templates:  []string{"rrsp_10k", "max_rrsp", "move_to_on"},
		ConfigPath: "household.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, 2026, compSet.FiscalYear)
	assert.Equal(t, "Baseline", compSet.BaseScenarioName)
	assert.Equal(t, "household.yaml", compSet.ConfigPath)

	base := compSet.BaseResult
	require.NotNil(t, base)
	assert.True(t, base.TotalTax.Equal(d("38421")))
	assert.True(t, base.AfterTaxIncome.Equal(d("78979")))
	assert.True(t, base.RemainingRRSPRoom.Equal(d("19782")))
	assert.True(t, base.Modeled)

	require.Len(t, compSet.AlternativeResults, 3)

	rrsp10k := compSet.AlternativeResults[0]
	assert.Equal(t, "Baseline_rrsp_10k", rrsp10k.ScenarioName)
	assert.Equal(t, "Contribute $10,000 to the RRSP", rrsp10k.Description)
	assert.Equal(t, []string{"Set RRSP contribution to $10000"}, rrsp10k.Transforms)
	assert.True(t, rrsp10k.TotalTax.Equal(d("34187")))
	assert.True(t, rrsp10k.TaxDiffFromBase.Equal(d("-4234")))
	assert.True(t, rrsp10k.AfterTaxDiffFromBase.Equal(d("4234")))
	assert.True(t, rrsp10k.AfterTaxPctFromBase.Equal(d("5.36")), "got %s", rrsp10k.AfterTaxPctFromBase)
	assert.True(t, rrsp10k.EffectiveRateDiff.Equal(d("-3.61")))
	assert.True(t, rrsp10k.MarginalRateDiff.Equal(d("-0.045925")))

	maxRRSP := compSet.AlternativeResults[1]
	assert.True(t, maxRRSP.RRSPDeduction.Equal(d("19782")))
	assert.True(t, maxRRSP.TotalTax.Equal(d("30461")))
	assert.True(t, maxRRSP.RemainingRRSPRoom.IsZero())

	ontario := compSet.AlternativeResults[2]
	assert.False(t, ontario.Modeled)
	assert.True(t, ontario.TotalTax.Equal(d("19728")))

	assert.Equal(t, []string{
		"Lowest Tax: Baseline_move_to_on saves $18693 in total tax compared to Baseline",
		"Best After-Tax: Baseline_move_to_on keeps $18693 more after tax",
		"Unused RRSP Room: Baseline has $19782 of room left; contributing it would save about $9042",
		"Not Modeled: Baseline_move_to_on is in ON, which has no provincial rules; its provincial tax and pension plan are shown as zero",
	}, compSet.Recommendations)
}

func TestCompareEngine_Compare_TransformSpecs(t *testing.T) {
	ce := newTestEngine(t)

	compSet, err := ce.Compare(context.Background(), createTestConfig(), CompareOptions{
		BaseScenarioName: "RRSP 10k",
		Templates:        []string{"set_rrsp:amount=0", "add_freelance_expenses:amount=2000"},
	})
	require.NoError(t, err)

	assert.Equal(t, "RRSP 10k", compSet.BaseScenarioName)
	assert.True(t, compSet.BaseResult.TotalTax.Equal(d("34187")))

	require.Len(t, compSet.AlternativeResults, 2)
	assert.Equal(t, "RRSP 10k_set_rrsp:amount=0", compSet.AlternativeResults[0].ScenarioName)
	assert.True(t, compSet.AlternativeResults[0].TaxDiffFromBase.Equal(d("4234")))
	assert.True(t, compSet.AlternativeResults[1].Input.FreelanceExpenses.Equal(d("7100")))
	assert.True(t, compSet.AlternativeResults[1].TaxDiffFromBase.IsNegative())
}

func TestCompareEngine_Compare_Errors(t *testing.T) {
	ce := newTestEngine(t)
	cfg := createTestConfig()

	_, err := ce.Compare(context.Background(), cfg, CompareOptions{BaseScenarioName: "missing"})
	assert.ErrorContains(t, err, "base scenario missing not found")

	_, err = ce.Compare(context.Background(), cfg, CompareOptions{Templates: []string{"retire_early"}})
	assert.ErrorContains(t, err, "template retire_early not found")

	_, err = ce.Compare(context.Background(), cfg, CompareOptions{Templates: []string{"set_rrsp:amount=abc"}})
	assert.ErrorContains(t, err, "invalid transform")

	_, err = ce.Compare(context.Background(), cfg, CompareOptions{Templates: []string{"add_rrsp:amount=-1"}})
	assert.ErrorContains(t, err, "failed to apply template")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ce.Compare(ctx, cfg, CompareOptions{Templates: []string{"rrsp_5k"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareEngine_CompareScenarios(t *testing.T) {
	ce := newTestEngine(t)

	compSet, err := ce.CompareScenarios(context.Background(), createTestConfig(), "", []string{"RRSP 10k", "Max RRSP"})
	require.NoError(t, err)

	assert.Equal(t, "Baseline", compSet.BaseScenarioName)
	require.Len(t, compSet.AlternativeResults, 2)
	assert.Equal(t, "RRSP 10k", compSet.AlternativeResults[0].ScenarioName)
	assert.True(t, compSet.AlternativeResults[1].TaxDiffFromBase.Equal(d("-7960")))
	assert.Equal(t, "Lowest Tax: Max RRSP saves $7960 in total tax compared to Baseline", compSet.Recommendations[0])

	_, err = ce.CompareScenarios(context.Background(), createTestConfig(), "", []string{"nope"})
	assert.ErrorContains(t, err, "alternative scenario nope not found")
}

func TestGenerateRecommendations(t *testing.T) {
	assert.Empty(t, GenerateRecommendations(&ComparisonSet{}))

	base := &ComparisonResult{ScenarioName: "base", Modeled: true, TotalTax: d("1000"), AfterTaxIncome: d("9000")}
	worse := ComparisonResult{ScenarioName: "worse", Modeled: true, TotalTax: d("1500"), AfterTaxIncome: d("8500")}
	assert.Empty(t, GenerateRecommendations(&ComparisonSet{BaseResult: base, AlternativeResults: []ComparisonResult{worse}}),
		"no alternative beats the base and the base has no room left")
}

func TestComparisonSet_ToScenarioResults(t *testing.T) {
	ce := newTestEngine(t)

	compSet, err := ce.Compare(context.Background(), createTestConfig(), CompareOptions{Templates: []string{"rrsp_10k"}})
	require.NoError(t, err)

	results := compSet.ToScenarioResults()
	assert.Equal(t, 2026, results.FiscalYear)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "Baseline", results.Baseline().Label)
	assert.True(t, results.Results[1].Breakdown.TotalTax.Equal(d("34187")))
	assert.True(t, results.Results[1].Input.RRSPContribution.Equal(d("10000")))
}
