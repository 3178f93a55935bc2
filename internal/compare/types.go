package compare

import (
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single scenario comparison with calculated metrics
type ComparisonResult struct {
	ScenarioName string   `json:"scenarioName"`
	Description  string   `json:"description,omitempty"`
	Transforms   []string `json:"transforms,omitempty"`
	Modeled      bool     `json:"modeled"` // provincial rules exist for the jurisdiction

	Input     domain.ScenarioInput `json:"input"`
	Breakdown domain.TaxBreakdown  `json:"breakdown"`

	// Key Metrics
	TotalTax             decimal.Decimal `json:"totalTax"`
	AfterTaxIncome       decimal.Decimal `json:"afterTaxIncome"`
	EffectiveTaxRate     decimal.Decimal `json:"effectiveTaxRate"`
	MarginalCombinedRate decimal.Decimal `json:"marginalCombinedRate"`
	RRSPDeduction        decimal.Decimal `json:"rrspDeduction"`
	RemainingRRSPRoom    decimal.Decimal `json:"remainingRrspRoom"`

	// Comparison to Base
	TaxDiffFromBase      decimal.Decimal `json:"taxDiffFromBase"` // negative means less tax
	AfterTaxDiffFromBase decimal.Decimal `json:"afterTaxDiffFromBase"`
	AfterTaxPctFromBase  decimal.Decimal `json:"afterTaxPctFromBase"`
	EffectiveRateDiff    decimal.Decimal `json:"effectiveRateDiff"`
	MarginalRateDiff     decimal.Decimal `json:"marginalRateDiff"`
}

// ComparisonSet represents a collection of scenario comparisons
type ComparisonSet struct {
	FiscalYear         int                `json:"fiscalYear"`
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// ToScenarioResults converts a ComparisonSet to domain.ScenarioResults for
// the report formatters. The base comes first.
func (cs *ComparisonSet) ToScenarioResults() *domain.ScenarioResults {
	results := &domain.ScenarioResults{
		FiscalYear: cs.FiscalYear,
		Results:    make([]domain.ScenarioResult, 0, len(cs.AlternativeResults)+1),
	}

	if cs.BaseResult != nil {
		results.Results = append(results.Results, cs.BaseResult.scenarioResult())
	}
	for _, alt := range cs.AlternativeResults {
		results.Results = append(results.Results, alt.scenarioResult())
	}
	return results
}

func (r ComparisonResult) scenarioResult() domain.ScenarioResult {
	return domain.ScenarioResult{
		Label:     r.ScenarioName,
		Input:     r.Input,
		Breakdown: r.Breakdown,
	}
}

// MetricsCalculator extracts key metrics from tax breakdowns
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics for one calculated scenario
func (mc *MetricsCalculator) CalculateMetrics(name string, input domain.ScenarioInput, b domain.TaxBreakdown) ComparisonResult {
	return ComparisonResult{
		ScenarioName:         name,
		Modeled:              b.ProvincialModeled,
		Input:                input,
		Breakdown:            b,
		TotalTax:             b.TotalTax,
		AfterTaxIncome:       b.AfterTaxIncome,
		EffectiveTaxRate:     b.EffectiveTaxRate,
		MarginalCombinedRate: b.MarginalCombinedRate,
		RRSPDeduction:        b.RRSPDeduction,
		RemainingRRSPRoom:    b.RemainingRRSPRoom(),
	}
}

// CalculateComparison computes comparison metrics between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.TaxDiffFromBase = scenario.TotalTax.Sub(base.TotalTax)
	scenario.AfterTaxDiffFromBase = scenario.AfterTaxIncome.Sub(base.AfterTaxIncome)

	if !base.AfterTaxIncome.IsZero() {
		scenario.AfterTaxPctFromBase = scenario.AfterTaxDiffFromBase.
			Div(base.AfterTaxIncome).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	scenario.EffectiveRateDiff = scenario.EffectiveTaxRate.Sub(base.EffectiveTaxRate)
	scenario.MarginalRateDiff = scenario.MarginalCombinedRate.Sub(base.MarginalCombinedRate)

	return scenario
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	base := compSet.BaseResult
	if base == nil {
		return recommendations
	}

	if len(compSet.AlternativeResults) > 0 {
		lowestTax := -1
		for i, alt := range compSet.AlternativeResults {
			if alt.TotalTax.LessThan(base.TotalTax) &&
				(lowestTax < 0 || alt.TotalTax.LessThan(compSet.AlternativeResults[lowestTax].TotalTax)) {
				lowestTax = i
			}
		}
		if lowestTax >= 0 {
			alt := compSet.AlternativeResults[lowestTax]
			recommendations = append(recommendations,
				"Lowest Tax: "+alt.ScenarioName+" saves $"+base.TotalTax.Sub(alt.TotalTax).StringFixed(0)+
					" in total tax compared to "+base.ScenarioName)
		}

		bestAfterTax := -1
		for i, alt := range compSet.AlternativeResults {
			if alt.AfterTaxIncome.GreaterThan(base.AfterTaxIncome) &&
				(bestAfterTax < 0 || alt.AfterTaxIncome.GreaterThan(compSet.AlternativeResults[bestAfterTax].AfterTaxIncome)) {
				bestAfterTax = i
			}
		}
		if bestAfterTax >= 0 {
			alt := compSet.AlternativeResults[bestAfterTax]
			recommendations = append(recommendations,
				"Best After-Tax: "+alt.ScenarioName+" keeps $"+alt.AfterTaxIncome.Sub(base.AfterTaxIncome).StringFixed(0)+
					" more after tax")
		}
	}

	if base.RemainingRRSPRoom.IsPositive() && base.Breakdown.RRSPTaxSavingsIfMaxed.IsPositive() {
		recommendations = append(recommendations,
			fmt.Sprintf("Unused RRSP Room: %s has $%s of room left; contributing it would save about $%s",
				base.ScenarioName, base.RemainingRRSPRoom.StringFixed(0), base.Breakdown.RRSPTaxSavingsIfMaxed.StringFixed(0)))
	}

	for _, r := range append([]ComparisonResult{*base}, compSet.AlternativeResults...) {
		if !r.Modeled {
			recommendations = append(recommendations,
				fmt.Sprintf("Not Modeled: %s is in %s, which has no provincial rules; its provincial tax and pension plan are shown as zero",
					r.ScenarioName, r.Input.Jurisdiction))
		}
	}

	return recommendations
}
