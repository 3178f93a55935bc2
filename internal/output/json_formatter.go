package output

import (
	"encoding/json"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// JSONFormatter writes the results as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(results *domain.ScenarioResults) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}
