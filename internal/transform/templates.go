package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in scenario templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ScenarioTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates creates a template registry with the common what-if
// scenarios for a household
func CreateBuiltInTemplates(rrsp domain.RRSPRules) *TemplateRegistry {
	registry := NewTemplateRegistry()

	registry.Register(Template{
		Name:        "rrsp_5k",
		Description: "Contribute $5,000 to the RRSP",
		Transforms: []ScenarioTransform{
			&SetRRSPContribution{Amount: decimal.NewFromInt(5000)},
		},
	})

	registry.Register(Template{
		Name:        "rrsp_10k",
		Description: "Contribute $10,000 to the RRSP",
		Transforms: []ScenarioTransform{
			&SetRRSPContribution{Amount: decimal.NewFromInt(10000)},
		},
	})

	registry.Register(Template{
		Name:        "max_rrsp",
		Description: "Contribute the full RRSP room",
		Transforms: []ScenarioTransform{
			&MaxRRSPContribution{Rules: rrsp},
		},
	})

	registry.Register(Template{
		Name:        "freelance_plus_2k",
		Description: "Claim $2,000 more in freelance expenses",
		Transforms: []ScenarioTransform{
			&AddFreelanceExpenses{Delta: decimal.NewFromInt(2000)},
		},
	})

	registry.Register(Template{
		Name:        "move_to_on",
		Description: "Same household, resident in Ontario",
		Transforms: []ScenarioTransform{
			&SetJurisdiction{Jurisdiction: domain.JurisdictionON},
		},
	})

	registry.Register(Template{
		Name:        "max_rrsp_freelance_plus_2k",
		Description: "Full RRSP room + $2,000 more freelance expenses",
		Transforms: []ScenarioTransform{
			&AddFreelanceExpenses{Delta: decimal.NewFromInt(2000)},
			&MaxRRSPContribution{Rules: rrsp},
		},
	})

	return registry
}

// ApplyTemplate applies a template to a base input
func ApplyTemplate(base domain.ScenarioInput, template Template) (domain.ScenarioInput, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")

	categories := map[string][]Template{}
	order := []string{"RRSP", "Freelance", "Province", "Combination Strategies"}
	for _, name := range registry.List() {
		template := registry.templates[name]
		switch {
		case strings.Contains(name, "rrsp") && strings.Contains(name, "freelance"):
			categories["Combination Strategies"] = append(categories["Combination Strategies"], template)
		case strings.Contains(name, "rrsp"):
			categories["RRSP"] = append(categories["RRSP"], template)
		case strings.HasPrefix(name, "freelance_"):
			categories["Freelance"] = append(categories["Freelance"], template)
		case strings.HasPrefix(name, "move_to_"):
			categories["Province"] = append(categories["Province"], template)
		default:
			categories["Combination Strategies"] = append(categories["Combination Strategies"], template)
		}
	}

	for _, category := range order {
		templates := categories[category]
		if len(templates) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("%s:\n", category))
		for _, t := range templates {
			sb.WriteString(fmt.Sprintf("  %-30s %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Usage:\n")
	sb.WriteString("  taxplan compare household.yaml --with rrsp_10k,max_rrsp\n")
	sb.WriteString("  taxplan compare household.yaml --base \"RRSP 10k\" --with move_to_on\n")

	return sb.String()
}
