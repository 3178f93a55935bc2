package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFiscalYear is the year used when no year or rules file is given
const DefaultFiscalYear = 2026

//go:embed rules/*.yaml
var embeddedRules embed.FS

// RuleSetError describes a failure to load or validate a rule set
type RuleSetError struct {
	Operation string
	Source    string
	Cause     error
}

func (e *RuleSetError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("rule set %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("rule set %s %s: %v", e.Operation, e.Source, e.Cause)
}

func (e *RuleSetError) Unwrap() error {
	return e.Cause
}

// RuleLoader loads and caches rule sets by fiscal year. Embedded rule files
// are used unless a file is loaded explicitly.
type RuleLoader struct {
	mu     sync.RWMutex
	cache  map[int]*domain.RuleSet
	logger calculation.Logger
	now    func() time.Time
}

// NewRuleLoader creates a rule loader with an empty cache
func NewRuleLoader() *RuleLoader {
	return &RuleLoader{
		cache:  make(map[int]*domain.RuleSet),
		logger: calculation.NopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the loader logger. Nil restores the no-op logger.
func (rl *RuleLoader) SetLogger(l calculation.Logger) {
	if l == nil {
		rl.logger = calculation.NopLogger{}
		return
	}
	rl.logger = l
}

// LoadFromFile loads a rule set from a YAML, JSON or TOML file, chosen by
// extension. The result replaces any cached rule set for the same year.
func (rl *RuleLoader) LoadFromFile(path string) (*domain.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RuleSetError{Operation: "read", Source: path, Cause: err}
	}

	rules, err := DecodeRuleSet(data, filepath.Ext(path))
	if err != nil {
		return nil, &RuleSetError{Operation: "parse", Source: path, Cause: err}
	}
	if err := rules.Validate(); err != nil {
		return nil, &RuleSetError{Operation: "validate", Source: path, Cause: err}
	}

	rl.checkExpiry(rules)
	rl.mu.Lock()
	rl.cache[rules.Metadata.FiscalYear] = rules
	rl.mu.Unlock()

	return rules, nil
}

// Load returns the rule set for a fiscal year, from the cache or from the
// embedded rule files
func (rl *RuleLoader) Load(year int) (*domain.RuleSet, error) {
	rl.mu.RLock()
	cached, ok := rl.cache[year]
	rl.mu.RUnlock()
	if ok {
		return cached, nil
	}

	name := fmt.Sprintf("rules/%d.yaml", year)
	data, err := embeddedRules.ReadFile(name)
	if err != nil {
		return nil, &RuleSetError{Operation: "load", Source: strconv.Itoa(year), Cause: fmt.Errorf("no rules for fiscal year %d (available: %v)", year, AvailableYears())}
	}

	rules, err := DecodeRuleSet(data, ".yaml")
	if err != nil {
		return nil, &RuleSetError{Operation: "parse", Source: name, Cause: err}
	}
	if err := rules.Validate(); err != nil {
		return nil, &RuleSetError{Operation: "validate", Source: name, Cause: err}
	}
	if rules.Metadata.FiscalYear != year {
		return nil, &RuleSetError{Operation: "load", Source: name, Cause: fmt.Errorf("file declares fiscal year %d", rules.Metadata.FiscalYear)}
	}

	rl.checkExpiry(rules)
	rl.mu.Lock()
	// Another goroutine may have loaded the same year first
	if existing, ok := rl.cache[year]; ok {
		rules = existing
	} else {
		rl.cache[year] = rules
	}
	rl.mu.Unlock()

	rl.logger.Debugf("loaded embedded rules for fiscal year %d", year)
	return rules, nil
}

// Resolve loads rules from path when it is set, otherwise the embedded rules
// for year. A zero year selects DefaultFiscalYear.
func (rl *RuleLoader) Resolve(path string, year int) (*domain.RuleSet, error) {
	if path != "" {
		return rl.LoadFromFile(path)
	}
	if year == 0 {
		year = DefaultFiscalYear
	}
	return rl.Load(year)
}

func (rl *RuleLoader) checkExpiry(rules *domain.RuleSet) {
	if rules.Metadata.Expired(rl.now()) {
		rl.logger.Warnf("rules for fiscal year %d were valid until %s; results may be outdated",
			rules.Metadata.FiscalYear, rules.Metadata.ValidUntil)
	}
}

// DecodeRuleSet decodes rule data in the format named by ext
// (".yaml", ".yml", ".json" or ".toml")
func DecodeRuleSet(data []byte, ext string) (*domain.RuleSet, error) {
	var rules domain.RuleSet
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rules); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &rules); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported rules format %q", ext)
	}
	return &rules, nil
}

// AvailableYears lists the fiscal years with embedded rules
func AvailableYears() []int {
	entries, err := embeddedRules.ReadDir("rules")
	if err != nil {
		return nil
	}
	var years []int
	for _, e := range entries {
		year, err := strconv.Atoi(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err == nil {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}

// EncodeRuleSet writes a rule set as YAML, JSON or TOML
func EncodeRuleSet(rules *domain.RuleSet, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(rules)
	case "json":
		return json.MarshalIndent(rules, "", "  ")
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(rules); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
