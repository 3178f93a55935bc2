package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// OptimizeAllGoals runs every goal against the same household and compares
// the results. target_tax is skipped when constraints carry no target.
func (s *Solver) OptimizeAllGoals(
	ctx context.Context,
	base domain.ScenarioInput,
	constraints Constraints,
) (*MultiGoalResult, error) {
	var results []OptimizationResult

	for _, goal := range Goals {
		if goal == GoalTargetTax && constraints.TargetTax == nil {
			continue
		}

		req := OptimizationRequest{
			Base:          base,
			Goal:          goal,
			Constraints:   constraints,
			MaxIterations: s.Options.MaxIterations,
			Tolerance:     s.Options.Tolerance,
		}

		result, err := s.Optimize(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Keep going with the remaining goals
			continue
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, &OptimizeError{
			Operation: "optimize_all_goals",
			Message:   "no successful optimizations found",
		}
	}

	mg := &MultiGoalResult{Results: results}

	for i := range results {
		if mg.LowestTax == nil || results[i].Breakdown.TotalTax.LessThan(mg.LowestTax.Breakdown.TotalTax) {
			mg.LowestTax = &results[i]
		}
	}

	for i := range results {
		if !results[i].SavingsPerDollar.IsPositive() {
			continue
		}
		if mg.BestSavingsPerDollar == nil || results[i].SavingsPerDollar.GreaterThan(mg.BestSavingsPerDollar.SavingsPerDollar) {
			mg.BestSavingsPerDollar = &results[i]
		}
	}

	mg.Recommendations = s.generateRecommendations(mg)

	return mg, nil
}

// generateRecommendations creates recommendations from multi-goal results
func (s *Solver) generateRecommendations(result *MultiGoalResult) []string {
	var recommendations []string

	if result.LowestTax != nil {
		recommendations = append(recommendations, fmt.Sprintf(
			"To minimize tax: contribute $%s (%s), total tax $%s",
			result.LowestTax.OptimalContribution.StringFixed(0),
			result.LowestTax.Request.Goal,
			result.LowestTax.Breakdown.TotalTax.StringFixed(0)))
	}

	if result.BestSavingsPerDollar != nil {
		recommendations = append(recommendations, fmt.Sprintf(
			"Best value per dollar: contribute $%s (%s), saving %s cents of tax per dollar",
			result.BestSavingsPerDollar.OptimalContribution.StringFixed(0),
			result.BestSavingsPerDollar.Request.Goal,
			result.BestSavingsPerDollar.SavingsPerDollar.Shift(2).StringFixed(1)))
	}

	if result.LowestTax != nil && result.BestSavingsPerDollar != nil &&
		result.LowestTax.Request.Goal == result.BestSavingsPerDollar.Request.Goal {
		recommendations = append(recommendations, fmt.Sprintf(
			"%s gives both the lowest tax AND the best value per dollar",
			result.LowestTax.Request.Goal))
	}

	for _, r := range result.Results {
		if !r.Success && r.ConvergenceInfo != "" {
			recommendations = append(recommendations, fmt.Sprintf("%s: %s", r.Request.Goal, r.ConvergenceInfo))
		}
	}

	return recommendations
}
