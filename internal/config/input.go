package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Plausible age range for a tax filer
const (
	MinAge = 16
	MaxAge = 110
)

// InputParser handles parsing of household scenario files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a household configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a household configuration
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.ApplyDefaults(&config)

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ApplyDefaults normalises codes and fills optional fields
func (ip *InputParser) ApplyDefaults(config *domain.Configuration) {
	if config.FiscalYear == 0 {
		config.FiscalYear = DefaultFiscalYear
	}
	config.Household.Jurisdiction = domain.ParseJurisdiction(string(config.Household.Jurisdiction))
	if config.Household.FilingStatus == "" {
		config.Household.FilingStatus = domain.FilingSingle
	}
	for i := range config.Scenarios {
		if j := config.Scenarios[i].Overrides.Jurisdiction; j != nil {
			parsed := domain.ParseJurisdiction(string(*j))
			config.Scenarios[i].Overrides.Jurisdiction = &parsed
		}
	}
}

// ValidateConfiguration validates the household and every scenario
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config.FiscalYear < 2000 || config.FiscalYear > 2100 {
		return fmt.Errorf("fiscal year %d seems invalid", config.FiscalYear)
	}
	if err := ValidateInput(config.Household); err != nil {
		return fmt.Errorf("household validation failed: %w", err)
	}

	seen := make(map[string]bool, len(config.Scenarios))
	for i, scenario := range config.Scenarios {
		if scenario.Name == "" {
			return fmt.Errorf("scenario %d: scenario name is required", i)
		}
		if seen[scenario.Name] {
			return fmt.Errorf("scenario %d: duplicate scenario name %q", i, scenario.Name)
		}
		seen[scenario.Name] = true

		if err := ValidateInput(scenario.Overrides.Apply(config.Household)); err != nil {
			return fmt.Errorf("scenario %q validation failed: %w", scenario.Name, err)
		}
	}

	return nil
}

// ValidateInput enforces the ranges the engine relies on: non-negative money,
// a recognised jurisdiction and filing status, and a plausible age.
func ValidateInput(input domain.ScenarioInput) error {
	money := []struct {
		name  string
		value decimal.Decimal
	}{
		{"employment income", input.EmploymentIncome},
		{"freelance income", input.FreelanceIncome},
		{"freelance expenses", input.FreelanceExpenses},
		{"rental gross income", input.RentalGrossIncome},
		{"rental expenses", input.RentalExpenses},
		{"RRSP contribution", input.RRSPContribution},
	}
	for _, m := range money {
		if m.value.IsNegative() {
			return fmt.Errorf("%s cannot be negative", m.name)
		}
	}

	if !input.Jurisdiction.Valid() {
		return fmt.Errorf("unknown jurisdiction %q", input.Jurisdiction)
	}
	if input.FilingStatus != "" && !input.FilingStatus.Valid() {
		return fmt.Errorf("unknown filing status %q", input.FilingStatus)
	}
	if input.Age != 0 && (input.Age < MinAge || input.Age > MaxAge) {
		return fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	return nil
}
