package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/transform"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	rrsp := calcEngine.Rules.Federal.RRSP
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(rrsp),
		TransformRegistry: transform.NewTransformRegistry(rrsp),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScenarioName string   // Scenario to compare against; empty means the household baseline
	Templates        []string // Template names or transform specs ("set_rrsp:amount=5000")
	ConfigPath       string
}

type alternative struct {
	name        string
	description string
	transforms  []string
	input       domain.ScenarioInput
}

// Compare runs the base scenario and one alternative per template
func (ce *CompareEngine) Compare(
	ctx context.Context,
	config *domain.Configuration,
	options CompareOptions,
) (*ComparisonSet, error) {

	baseName := baseLabel(options.BaseScenarioName)
	baseInput, ok := config.FindScenario(options.BaseScenarioName)
	if !ok {
		return nil, fmt.Errorf("base scenario %s not found in configuration", options.BaseScenarioName)
	}

	alts := make([]alternative, 0, len(options.Templates))
	for _, templateName := range options.Templates {
		transforms, description, err := ce.resolve(templateName)
		if err != nil {
			return nil, err
		}

		modified, err := transform.ApplyTransforms(baseInput, transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}

		alts = append(alts, alternative{
			name:        baseName + "_" + templateName,
			description: description,
			transforms:  transform.Describe(transforms),
			input:       modified,
		})
	}

	return ce.run(ctx, baseName, baseInput, alts, options.ConfigPath)
}

// CompareScenarios compares named scenarios of the configuration (not using templates)
func (ce *CompareEngine) CompareScenarios(
	ctx context.Context,
	config *domain.Configuration,
	baseScenarioName string,
	alternativeScenarioNames []string,
) (*ComparisonSet, error) {

	baseInput, ok := config.FindScenario(baseScenarioName)
	if !ok {
		return nil, fmt.Errorf("base scenario %s not found", baseScenarioName)
	}

	alts := make([]alternative, 0, len(alternativeScenarioNames))
	for _, altName := range alternativeScenarioNames {
		input, ok := config.FindScenario(altName)
		if !ok {
			return nil, fmt.Errorf("alternative scenario %s not found", altName)
		}
		alts = append(alts, alternative{name: baseLabel(altName), input: input})
	}

	return ce.run(ctx, baseLabel(baseScenarioName), baseInput, alts, "")
}

// resolve looks a name up as a template first, then as a transform spec
func (ce *CompareEngine) resolve(name string) ([]transform.ScenarioTransform, string, error) {
	if template, ok := ce.TemplateRegistry.Get(name); ok {
		return template.Transforms, template.Description, nil
	}

	specName := strings.TrimSpace(strings.SplitN(name, ":", 2)[0])
	for _, known := range ce.TransformRegistry.List() {
		if known == specName {
			t, err := ce.TransformRegistry.ParseTransformSpec(name)
			if err != nil {
				return nil, "", fmt.Errorf("invalid transform %s: %w", name, err)
			}
			return []transform.ScenarioTransform{t}, t.Description(), nil
		}
	}

	return nil, "", fmt.Errorf("template %s not found", name)
}

func (ce *CompareEngine) run(ctx context.Context, baseName string, baseInput domain.ScenarioInput, alts []alternative, configPath string) (*ComparisonSet, error) {
	inputs := make([]domain.ScenarioInput, 0, len(alts)+1)
	inputs = append(inputs, baseInput)
	for _, alt := range alts {
		inputs = append(inputs, alt.input)
	}

	breakdowns, err := ce.CalcEngine.CalculateBatch(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate scenarios: %w", err)
	}

	baseResult := ce.metrics(baseName, baseInput, breakdowns[0])

	alternatives := make([]ComparisonResult, 0, len(alts))
	for i, alt := range alts {
		altResult := ce.metrics(alt.name, alt.input, breakdowns[i+1])
		altResult.Description = alt.description
		altResult.Transforms = alt.transforms
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)
		alternatives = append(alternatives, altResult)
	}

	compSet := &ComparisonSet{
		FiscalYear:         ce.CalcEngine.FiscalYear(),
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
		ConfigPath:         configPath,
	}

	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func (ce *CompareEngine) metrics(name string, input domain.ScenarioInput, b domain.TaxBreakdown) ComparisonResult {
	return ce.MetricsCalculator.CalculateMetrics(name, input, b)
}

func baseLabel(name string) string {
	if name == "" {
		return "Baseline"
	}
	return name
}
