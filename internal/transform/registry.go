package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
	rrsp      domain.RRSPRules
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ScenarioTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms
// registered. The RRSP rules back the max_rrsp transform.
func NewTransformRegistry(rrsp domain.RRSPRules) *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
		rrsp:      rrsp,
	}

	registry.Register("set_rrsp", amountFactory("set_rrsp", "amount", func(v decimal.Decimal) ScenarioTransform {
		return &SetRRSPContribution{Amount: v}
	}))
	registry.Register("add_rrsp", amountFactory("add_rrsp", "amount", func(v decimal.Decimal) ScenarioTransform {
		return &AddRRSPContribution{Delta: v}
	}))
	registry.Register("max_rrsp", func(map[string]string) (ScenarioTransform, error) {
		return &MaxRRSPContribution{Rules: registry.rrsp}, nil
	})
	registry.Register("set_freelance_expenses", amountFactory("set_freelance_expenses", "amount", func(v decimal.Decimal) ScenarioTransform {
		return &SetFreelanceExpenses{Amount: v}
	}))
	registry.Register("add_freelance_expenses", amountFactory("add_freelance_expenses", "amount", func(v decimal.Decimal) ScenarioTransform {
		return &AddFreelanceExpenses{Delta: v}
	}))
	registry.Register("set_employment_income", amountFactory("set_employment_income", "amount", func(v decimal.Decimal) ScenarioTransform {
		return &SetEmploymentIncome{Amount: v}
	}))
	registry.Register("set_jurisdiction", createSetJurisdiction)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ScenarioTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "set_rrsp:amount=10000". Transforms without parameters may omit
// the colon ("max_rrsp").
func (r *TransformRegistry) ParseTransformSpec(spec string) (ScenarioTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	params := make(map[string]string)
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		for _, paramPair := range strings.Split(parts[1], ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses a semicolon separated list of specs
func (r *TransformRegistry) ParseTransformSpecs(specs string) ([]ScenarioTransform, error) {
	var out []ScenarioTransform
	for _, spec := range strings.Split(specs, ";") {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func amountFactory(name, key string, build func(decimal.Decimal) ScenarioTransform) TransformFactory {
	return func(params map[string]string) (ScenarioTransform, error) {
		raw, ok := params[key]
		if !ok {
			return nil, fmt.Errorf("%s requires '%s' parameter", name, key)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", key, err)
		}
		return build(v), nil
	}
}

func createSetJurisdiction(params map[string]string) (ScenarioTransform, error) {
	code, ok := params["province"]
	if !ok {
		return nil, fmt.Errorf("set_jurisdiction requires 'province' parameter")
	}
	return &SetJurisdiction{Jurisdiction: domain.ParseJurisdiction(code)}, nil
}
