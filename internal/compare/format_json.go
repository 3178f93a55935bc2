package compare

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty  bool // If true, format with indentation
	Summary bool // If true, omit inputs and full breakdowns
}

type jsonSummaryRow struct {
	ScenarioName    string          `json:"scenarioName"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	AfterTaxIncome  decimal.Decimal `json:"afterTaxIncome"`
	TaxDiffFromBase decimal.Decimal `json:"taxDiffFromBase"`
}

type jsonSummary struct {
	FiscalYear      int              `json:"fiscalYear"`
	Base            jsonSummaryRow   `json:"base"`
	Alternatives    []jsonSummaryRow `json:"alternatives"`
	Recommendations []string         `json:"recommendations"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(compSet *ComparisonSet) (string, error) {
	var payload any = compSet
	if jf.Summary {
		payload = summarize(compSet)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if jf.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		return "", err
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func summarize(compSet *ComparisonSet) jsonSummary {
	s := jsonSummary{
		FiscalYear:      compSet.FiscalYear,
		Alternatives:    make([]jsonSummaryRow, 0, len(compSet.AlternativeResults)),
		Recommendations: compSet.Recommendations,
	}
	if compSet.BaseResult != nil {
		s.Base = summaryRow(*compSet.BaseResult)
	}
	for _, alt := range compSet.AlternativeResults {
		s.Alternatives = append(s.Alternatives, summaryRow(alt))
	}
	return s
}

func summaryRow(r ComparisonResult) jsonSummaryRow {
	return jsonSummaryRow{
		ScenarioName:    r.ScenarioName,
		TotalTax:        r.TotalTax,
		AfterTaxIncome:  r.AfterTaxIncome,
		TaxDiffFromBase: r.TaxDiffFromBase,
	}
}
