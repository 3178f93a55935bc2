package output

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// HTMLFormatter produces a standalone HTML report
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"pct":  FormatPercentage,
	"rate": FormatRate,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(results *domain.ScenarioResults) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*domain.ScenarioResults
		Recommendation Recommendation
		Assumptions    []string
		GeneratedAt    string
	}{results, AnalyzeScenarios(results), DefaultAssumptions, time.Now().Format("2006-01-02 15:04:05")}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
