package breakeven

import (
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// OptimizationGoal defines what outcome the RRSP contribution should achieve
type OptimizationGoal string

const (
	GoalMinimizeTax OptimizationGoal = "min_tax"      // Smallest contribution reaching the lowest total tax
	GoalTargetTax   OptimizationGoal = "target_tax"   // Smallest contribution with total tax <= target
	GoalDropBracket OptimizationGoal = "drop_bracket" // Contribution that leaves the current combined bracket
)

// Goals lists every supported goal
var Goals = []OptimizationGoal{GoalMinimizeTax, GoalTargetTax, GoalDropBracket}

// Constraints define bounds for the contribution search
type Constraints struct {
	MinContribution *decimal.Decimal `json:"minContribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"maxContribution,omitempty"`

	// Total tax to reach for the target_tax goal
	TargetTax *decimal.Decimal `json:"targetTax,omitempty"`
}

// OptimizationRequest defines the parameters for an optimization run
type OptimizationRequest struct {
	Base          domain.ScenarioInput `json:"base"`
	Goal          OptimizationGoal     `json:"goal"`
	Constraints   Constraints          `json:"constraints"`
	MaxIterations int                  `json:"maxIterations"` // Maximum solver iterations
	Tolerance     decimal.Decimal      `json:"tolerance"`     // Convergence tolerance for binary search, in dollars
}

// OptimizationResult contains the results of an optimization run
type OptimizationResult struct {
	Request         OptimizationRequest `json:"request"`
	Success         bool                `json:"success"`
	Iterations      int                 `json:"iterations"`
	ConvergenceInfo string              `json:"convergenceInfo"`

	OptimalContribution decimal.Decimal  `json:"optimalContribution"`
	ContributionRoom    decimal.Decimal  `json:"contributionRoom"`
	BracketFloor        *decimal.Decimal `json:"bracketFloor,omitempty"` // drop_bracket only

	// Results at the optimal contribution
	Breakdown domain.TaxBreakdown `json:"breakdown"`

	// Comparison to base
	BaseBreakdown        domain.TaxBreakdown `json:"baseBreakdown"`
	TaxDiffFromBase      decimal.Decimal     `json:"taxDiffFromBase"`
	AfterTaxDiffFromBase decimal.Decimal     `json:"afterTaxDiffFromBase"`
	SavingsPerDollar     decimal.Decimal     `json:"savingsPerDollar"` // tax saved per extra dollar contributed
}

// MultiGoalResult contains results when optimizing for several goals
type MultiGoalResult struct {
	Results              []OptimizationResult `json:"results"`
	LowestTax            *OptimizationResult  `json:"lowestTax"`
	BestSavingsPerDollar *OptimizationResult  `json:"bestSavingsPerDollar"`
	Recommendations      []string             `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Convergence tolerance in dollars
	MaxIterations int             // Maximum iterations
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1), // whole dollars
		MaxIterations: 50,
	}
}

// Validate checks if constraints are internally consistent for goal
func (c *Constraints) Validate(goal OptimizationGoal) error {
	if c.MinContribution != nil && c.MinContribution.IsNegative() {
		return &OptimizeError{
			Operation: "validate_constraints",
			Message:   "min_contribution cannot be negative",
		}
	}

	if c.MaxContribution != nil && c.MaxContribution.IsNegative() {
		return &OptimizeError{
			Operation: "validate_constraints",
			Message:   "max_contribution cannot be negative",
		}
	}

	if c.MinContribution != nil && c.MaxContribution != nil {
		if c.MinContribution.GreaterThan(*c.MaxContribution) {
			return &OptimizeError{
				Operation: "validate_constraints",
				Message:   "min_contribution cannot be greater than max_contribution",
			}
		}
	}

	if goal == GoalTargetTax {
		if c.TargetTax == nil {
			return &OptimizeError{
				Operation: "validate_constraints",
				Message:   "target_tax goal requires a target tax",
			}
		}
		if c.TargetTax.IsNegative() {
			return &OptimizeError{
				Operation: "validate_constraints",
				Message:   "target tax cannot be negative",
			}
		}
	}

	return nil
}

// OptimizeError represents errors from the contribution optimiser
type OptimizeError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *OptimizeError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *OptimizeError) Unwrap() error {
	return e.Cause
}
