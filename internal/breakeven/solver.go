package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/transform"
	"github.com/shopspring/decimal"
)

// Solver searches for RRSP contributions that meet a tax goal
type Solver struct {
	CalcEngine *calculation.Engine
	Options    SolverOptions
}

// NewSolver creates a new contribution solver
func NewSolver(calcEngine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.Engine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// searchBounds is the contribution interval the solver may use
type searchBounds struct {
	lo, hi decimal.Decimal
	room   decimal.Decimal
}

// Optimize performs optimization based on the request
func (s *Solver) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	if err := req.Constraints.Validate(req.Goal); err != nil {
		return nil, err
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	// Midpoints are whole dollars, so the search cannot narrow below $1.
	if one := decimal.NewFromInt(1); req.Tolerance.LessThan(one) {
		req.Tolerance = one
	}

	base := s.CalcEngine.CalculateTax(req.Base)
	bounds, err := s.bounds(req, base)
	if err != nil {
		return nil, err
	}

	switch req.Goal {
	case GoalMinimizeTax:
		return s.optimizeMinTax(ctx, req, base, bounds)
	case GoalTargetTax:
		return s.optimizeTargetTax(ctx, req, base, bounds)
	case GoalDropBracket:
		return s.optimizeDropBracket(req, base, bounds)
	default:
		return nil, &OptimizeError{
			Operation: "optimize",
			Message:   fmt.Sprintf("unsupported optimization goal: %s", req.Goal),
		}
	}
}

// bounds caps the search interval at the contribution room
func (s *Solver) bounds(req OptimizationRequest, base domain.TaxBreakdown) (searchBounds, error) {
	b := searchBounds{lo: decimal.Zero, hi: base.RRSPContributionRoom, room: base.RRSPContributionRoom}
	if req.Constraints.MaxContribution != nil {
		b.hi = decimal.Min(b.hi, *req.Constraints.MaxContribution)
	}
	if req.Constraints.MinContribution != nil {
		b.lo = *req.Constraints.MinContribution
	}
	if b.lo.GreaterThan(b.hi) {
		return b, &OptimizeError{
			Operation: "optimize",
			Message:   fmt.Sprintf("minimum contribution %s exceeds the available room %s", b.lo.StringFixed(0), b.hi.StringFixed(0)),
		}
	}
	return b, nil
}

// optimizeMinTax finds the largest contribution that still lowers tax: the
// full room unless income tax reaches zero first
func (s *Solver) optimizeMinTax(ctx context.Context, req OptimizationRequest, base domain.TaxBreakdown, b searchBounds) (*OptimizationResult, error) {
	taxFree := func(c decimal.Decimal) (bool, error) {
		bd, err := s.evaluate(req.Base, c)
		if err != nil {
			return false, err
		}
		return bd.IncomeTax().IsZero(), nil
	}

	atHi, err := taxFree(b.hi)
	if err != nil {
		return nil, s.wrap("optimize_min_tax", err)
	}
	if !atHi {
		result, err := s.evaluateResult(req, base, b, b.hi, 1)
		if err != nil {
			return nil, err
		}
		result.Success = true
		result.ConvergenceInfo = "Every dollar of available room reduces income tax"
		return result, nil
	}

	atLo, err := taxFree(b.lo)
	if err != nil {
		return nil, s.wrap("optimize_min_tax", err)
	}
	if atLo {
		result, err := s.evaluateResult(req, base, b, b.lo, 1)
		if err != nil {
			return nil, err
		}
		result.Success = true
		result.ConvergenceInfo = "Income tax is already zero at the minimum contribution"
		return result, nil
	}

	return s.binarySearch(ctx, "optimize_min_tax", req, base, b, taxFree)
}

// optimizeTargetTax finds the smallest contribution whose total tax does not
// exceed the target
func (s *Solver) optimizeTargetTax(ctx context.Context, req OptimizationRequest, base domain.TaxBreakdown, b searchBounds) (*OptimizationResult, error) {
	target := *req.Constraints.TargetTax
	meetsTarget := func(c decimal.Decimal) (bool, error) {
		bd, err := s.evaluate(req.Base, c)
		if err != nil {
			return false, err
		}
		return bd.TotalTax.LessThanOrEqual(target), nil
	}

	atLo, err := meetsTarget(b.lo)
	if err != nil {
		return nil, s.wrap("optimize_target_tax", err)
	}
	if atLo {
		result, err := s.evaluateResult(req, base, b, b.lo, 1)
		if err != nil {
			return nil, err
		}
		result.Success = true
		result.ConvergenceInfo = fmt.Sprintf("Total tax is already at or below $%s", target.StringFixed(0))
		return result, nil
	}

	atHi, err := meetsTarget(b.hi)
	if err != nil {
		return nil, s.wrap("optimize_target_tax", err)
	}
	if !atHi {
		result, err := s.evaluateResult(req, base, b, b.hi, 1)
		if err != nil {
			return nil, err
		}
		result.ConvergenceInfo = fmt.Sprintf("Target $%s is not reachable; the lowest total tax is $%s",
			target.StringFixed(0), result.Breakdown.TotalTax.StringFixed(0))
		return result, nil
	}

	return s.binarySearch(ctx, "optimize_target_tax", req, base, b, meetsTarget)
}

// binarySearch returns the smallest whole-dollar contribution in (lo, hi]
// satisfying pred. pred must be false at lo, true at hi and monotonic.
func (s *Solver) binarySearch(
	ctx context.Context,
	operation string,
	req OptimizationRequest,
	base domain.TaxBreakdown,
	b searchBounds,
	pred func(decimal.Decimal) (bool, error),
) (*OptimizationResult, error) {
	lo, hi := b.lo, b.hi
	two := decimal.NewFromInt(2)
	iterations := 0

	for hi.Sub(lo).GreaterThan(req.Tolerance) && iterations < req.MaxIterations {
		iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mid := lo.Add(hi).Div(two).Floor()
		ok, err := pred(mid)
		if err != nil {
			return nil, s.wrap(operation, err)
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}

	result, err := s.evaluateResult(req, base, b, hi, iterations)
	if err != nil {
		return nil, err
	}
	if hi.Sub(lo).GreaterThan(req.Tolerance) {
		result.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
		return result, nil
	}
	result.Success = true
	result.ConvergenceInfo = fmt.Sprintf("Binary search converged within $%s", req.Tolerance.StringFixed(0))
	return result, nil
}

// optimizeDropBracket computes the contribution that brings taxable income
// down to the floor of the current combined bracket
func (s *Solver) optimizeDropBracket(req OptimizationRequest, base domain.TaxBreakdown, b searchBounds) (*OptimizationResult, error) {
	taxable := base.TotalTaxableIncome
	floor := decimal.Max(
		calculation.BracketFloor(taxable, s.CalcEngine.Rules.Federal.Brackets),
		s.CalcEngine.Provincial(req.Base.Jurisdiction).BracketFloor(taxable),
	)

	if !floor.IsPositive() {
		result, err := s.evaluateResult(req, base, b, decimal.Max(b.lo, base.RRSPDeduction), 1)
		if err != nil {
			return nil, err
		}
		result.BracketFloor = &floor
		result.ConvergenceInfo = "Taxable income is already in the lowest combined bracket"
		return result, nil
	}

	needed := base.RRSPDeduction.Add(taxable.Sub(floor))
	contribution := decimal.Max(needed, b.lo)
	success := true
	info := fmt.Sprintf("Taxable income drops to the $%s bracket floor", floor.StringFixed(0))
	if contribution.GreaterThan(b.hi) {
		contribution = b.hi
		success = false
		info = fmt.Sprintf("Reaching the $%s bracket floor needs $%s but only $%s is available",
			floor.StringFixed(0), needed.StringFixed(0), b.hi.StringFixed(0))
	}

	result, err := s.evaluateResult(req, base, b, contribution, 1)
	if err != nil {
		return nil, err
	}
	result.Success = success
	result.ConvergenceInfo = info
	result.BracketFloor = &floor
	return result, nil
}

// evaluate runs the engine with the contribution set to c
func (s *Solver) evaluate(base domain.ScenarioInput, c decimal.Decimal) (domain.TaxBreakdown, error) {
	input, err := transform.ApplyTransforms(base, []transform.ScenarioTransform{
		&transform.SetRRSPContribution{Amount: c},
	})
	if err != nil {
		return domain.TaxBreakdown{}, err
	}
	return s.CalcEngine.CalculateTax(input), nil
}

// evaluateResult creates an optimization result at contribution c
func (s *Solver) evaluateResult(
	req OptimizationRequest,
	base domain.TaxBreakdown,
	b searchBounds,
	c decimal.Decimal,
	iterations int,
) (*OptimizationResult, error) {
	bd, err := s.evaluate(req.Base, c)
	if err != nil {
		return nil, s.wrap("evaluate", err)
	}

	result := &OptimizationResult{
		Request:              req,
		Iterations:           iterations,
		OptimalContribution:  c,
		ContributionRoom:     b.room,
		Breakdown:            bd,
		BaseBreakdown:        base,
		TaxDiffFromBase:      bd.TotalTax.Sub(base.TotalTax),
		AfterTaxDiffFromBase: bd.AfterTaxIncome.Sub(base.AfterTaxIncome),
	}

	extra := bd.RRSPDeduction.Sub(base.RRSPDeduction)
	if extra.IsPositive() {
		from := req.Base
		from.RRSPContribution = base.RRSPDeduction
		saved := s.CalcEngine.DifferentialSavings(from, extra)
		result.SavingsPerDollar = saved.Div(extra).Round(4)
	}

	return result, nil
}

func (s *Solver) wrap(operation string, err error) error {
	return &OptimizeError{
		Operation: operation,
		Message:   "failed to calculate scenario",
		Cause:     err,
	}
}
