package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine orchestrates the federal, provincial and deduction calculators for
// one fiscal year. It holds no mutable state after construction and may be
// shared between goroutines.
type Engine struct {
	Rules      *domain.RuleSet
	Federal    *FederalTaxCalculator
	Deductions *DeductionCalculator
	Debug      bool // Enable debug output for detailed calculations

	provincial map[domain.Jurisdiction]*ProvincialTaxCalculator
	logger     Logger
}

// NewEngine creates an engine for a validated rule set
func NewEngine(rules *domain.RuleSet) *Engine {
	e := &Engine{
		Rules:      rules,
		Federal:    NewFederalTaxCalculator(rules.Metadata.FiscalYear, rules.Federal),
		Deductions: NewDeductionCalculator(rules.Federal.RRSP),
		provincial: make(map[domain.Jurisdiction]*ProvincialTaxCalculator, len(domain.Jurisdictions)),
		logger:     NopLogger{},
	}
	for _, j := range domain.Jurisdictions {
		jr, ok := rules.Jurisdiction(j)
		e.provincial[j] = NewProvincialTaxCalculator(j, jr, ok)
	}
	return e
}

// SetLogger sets the engine logger. Nil restores the no-op logger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.logger = NopLogger{}
		return
	}
	e.logger = l
}

// Provincial returns the provincial calculator for j. Codes outside the rule
// table get a calculator that yields zero for everything.
func (e *Engine) Provincial(j domain.Jurisdiction) *ProvincialTaxCalculator {
	if ptc, ok := e.provincial[j]; ok {
		return ptc
	}
	return NewProvincialTaxCalculator(j, domain.JurisdictionRules{}, false)
}

// FiscalYear returns the year of the engine's rule set
func (e *Engine) FiscalYear() int {
	return e.Rules.Metadata.FiscalYear
}

// CalculateTax computes the full breakdown for one scenario input. It never
// fails: inputs are validated upstream and every division is guarded.
func (e *Engine) CalculateTax(input domain.ScenarioInput) domain.TaxBreakdown {
	prov := e.Provincial(input.Jurisdiction)
	if !prov.Modeled {
		e.logger.Warnf("jurisdiction %q has no provincial rules for %d; provincial tax, pension plan and abatement are zero", input.Jurisdiction, e.FiscalYear())
	}

	// Income
	netFreelance := floorZero(input.FreelanceIncome.Sub(input.FreelanceExpenses))
	netRental := input.RentalGrossIncome.Sub(input.RentalExpenses)
	totalGross := input.EmploymentIncome.Add(netFreelance).Add(floorZero(netRental))

	// Deductions
	earned := input.EmploymentIncome.Add(netFreelance)
	room := e.Deductions.ContributionRoom(earned)
	rrspDeduction := e.Deductions.CappedDeduction(input.RRSPContribution, room)
	totalDeductions := rrspDeduction

	taxable := floorZero(totalGross.Sub(totalDeductions))

	// Federal
	federalBefore := e.Federal.CalculateTax(taxable)
	federalAfterCredits := e.Federal.ApplyBasicPersonalCredit(federalBefore)
	abatement := prov.Abatement(federalAfterCredits)
	federalTax := floorZero(federalAfterCredits.Sub(abatement))

	// Provincial
	provincialBefore := prov.CalculateTax(taxable)
	provincialTax := prov.ApplyBasicPersonalCredit(provincialBefore)

	// Payroll
	pension := prov.PensionPlanContribution(input.EmploymentIncome)
	ei := e.Federal.EIPremium(input.EmploymentIncome)

	totalTax := federalTax.Add(provincialTax).Add(pension).Add(ei)
	afterTax := floorZero(totalGross.Sub(totalTax))

	effectiveRate := decimal.Zero
	if totalGross.IsPositive() {
		effectiveRate = totalTax.Div(totalGross).Mul(decimal.NewFromInt(10000)).Round(0).Div(decimal.NewFromInt(100))
	}

	// Marginal rates
	marginalFederal := e.Federal.MarginalRate(taxable)
	marginalProvincial := prov.MarginalRate(taxable)
	marginalCombined := prov.EffectiveFederalRate(marginalFederal).Add(marginalProvincial)

	remainingRoom := floorZero(room.Sub(rrspDeduction))
	savings := e.TaxSavingsIfMaxed(remainingRoom, taxable, input.Jurisdiction)

	if e.Debug {
		e.logger.Debugf("%s: gross=%s taxable=%s federal=%s (abatement %s) provincial=%s pension=%s ei=%s total=%s",
			input.Jurisdiction, totalGross, taxable, federalTax, abatement, provincialTax, pension, ei, totalTax)
	}

	return domain.TaxBreakdown{
		FiscalYear:   e.FiscalYear(),
		Jurisdiction: input.Jurisdiction,

		EmploymentIncome: input.EmploymentIncome,
		FreelanceIncome:  netFreelance,
		RentalIncome:     netRental,
		TotalGrossIncome: totalGross,

		RRSPDeduction:     rrspDeduction,
		FreelanceExpenses: input.FreelanceExpenses,
		RentalExpenses:    input.RentalExpenses,
		UnionDues:         decimal.Zero,
		TotalDeductions:   totalDeductions,

		TotalTaxableIncome: taxable,

		FederalTaxBeforeCredits:    federalBefore,
		BasicPersonalAmountFederal: e.Rules.Federal.BasicPersonalAmount,
		FederalTax:                 federalTax,

		ProvincialTaxBeforeCredits:    provincialBefore,
		BasicPersonalAmountProvincial: prov.BasicPersonalAmount(),
		ProvincialAbatement:           abatement,
		ProvincialTax:                 provincialTax,
		ProvincialModeled:             prov.Modeled,

		PensionPlanContribution: pension,
		EIPremium:               ei,

		TotalTax:               totalTax,
		EffectiveTaxRate:       effectiveRate,
		MarginalFederalRate:    marginalFederal,
		MarginalProvincialRate: marginalProvincial,
		MarginalCombinedRate:   marginalCombined,
		AfterTaxIncome:         afterTax,

		RRSPContributionRoom:  room,
		RRSPTaxSavingsIfMaxed: savings,
		TFSARoom:              e.Rules.Federal.TFSARoom,
	}
}

// TaxSavingsIfMaxed estimates the tax saved by contributing the remaining
// room, using the combined marginal rate at the current taxable income.
// The shifted income is not recalculated through the brackets; see
// DifferentialSavings for the exact figure.
func (e *Engine) TaxSavingsIfMaxed(remainingRoom, taxableIncome decimal.Decimal, j domain.Jurisdiction) decimal.Decimal {
	if !remainingRoom.IsPositive() {
		return decimal.Zero
	}
	prov := e.Provincial(j)
	combined := prov.EffectiveFederalRate(e.Federal.MarginalRate(taxableIncome)).Add(prov.MarginalRate(taxableIncome))
	return roundDollar(remainingRoom.Mul(combined))
}

// DifferentialSavings runs the full calculation with and without an extra
// RRSP contribution and returns the reduction in total tax. The extra amount
// is still capped by contribution room.
func (e *Engine) DifferentialSavings(input domain.ScenarioInput, extra decimal.Decimal) decimal.Decimal {
	base := e.CalculateTax(input)
	shifted := input
	shifted.RRSPContribution = input.RRSPContribution.Add(extra)
	return base.TotalTax.Sub(e.CalculateTax(shifted).TotalTax)
}

// CalculateBatch computes breakdowns for many inputs in parallel. Results keep
// the order of inputs. A cancelled context stops the batch and returns the
// context error.
func (e *Engine) CalculateBatch(ctx context.Context, inputs []domain.ScenarioInput) ([]domain.TaxBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch calculation cancelled: %w", err)
	}
	results := make([]domain.TaxBreakdown, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.CalculateTax(inputs[i])
			}
		}()
	}

	var err error
feed:
	for i := range inputs {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, fmt.Errorf("batch calculation cancelled: %w", err)
	}
	return results, nil
}

// RunScenarios calculates the household baseline and every scenario of a
// configuration. The baseline is always the first result.
func (e *Engine) RunScenarios(ctx context.Context, config *domain.Configuration) (*domain.ScenarioResults, error) {
	labels, inputs := config.ScenarioInputs()
	breakdowns, err := e.CalculateBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	results := &domain.ScenarioResults{
		FiscalYear: e.FiscalYear(),
		Results:    make([]domain.ScenarioResult, len(inputs)),
	}
	for i := range inputs {
		results.Results[i] = domain.ScenarioResult{
			ID:        uuid.NewString(),
			Label:     labels[i],
			Input:     inputs[i],
			Breakdown: breakdowns[i],
		}
	}
	e.logger.Infof("calculated %d scenarios for fiscal year %d", len(results.Results), results.FiscalYear)
	return results, nil
}
