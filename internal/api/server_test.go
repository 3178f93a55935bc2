package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rgehrsitz/taxplan/internal/breakeven"
	"github.com/rgehrsitz/taxplan/internal/compare"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const householdJSON = `{
	"employmentIncome": 95000,
	"freelanceIncome": 20000,
	"freelanceExpenses": 5100,
	"rentalGrossIncome": 28800,
	"rentalExpenses": 21300,
	"province": "qc",
	"age": 26
}`

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	s := NewServer(config.NewRuleLoader())
	s.EnableMetrics()
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","years":[2026]}`, w.Body.String())
}

func TestTax(t *testing.T) {
	body := `{"household": ` + householdJSON + `, "scenarios": [{"name": "RRSP 10k", "overrides": {"rrspContribution": 10000}}]}`
	w := do(t, newTestServer(t), http.MethodPost, "/api/tax", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results domain.ScenarioResults
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, 2026, results.FiscalYear)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "Baseline", results.Results[0].Label)
	assert.Equal(t, domain.JurisdictionQC, results.Results[0].Breakdown.Jurisdiction)
	assert.True(t, results.Results[0].Breakdown.TotalTax.Equal(dec("38421")))
	assert.True(t, results.Results[1].Breakdown.TotalTax.Equal(dec("34187")))
	assert.NotEmpty(t, results.Results[0].ID)
	assert.True(t, results.Results[0].Breakdown.ProvincialModeled)
}

func TestTax_UnmodeledJurisdictionIsFlagged(t *testing.T) {
	body := `{"household": ` + householdJSON + `, "scenarios": [{"name": "Ontario", "overrides": {"province": "ON"}}]}`
	w := do(t, newTestServer(t), http.MethodPost, "/api/tax", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw struct {
		Results []struct {
			Breakdown map[string]any `json:"breakdown"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw.Results, 2)
	assert.Equal(t, true, raw.Results[0].Breakdown["provincialModeled"])
	assert.Equal(t, false, raw.Results[1].Breakdown["provincialModeled"])
	assert.Equal(t, "0", raw.Results[1].Breakdown["provincialTax"])
}

func TestTax_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		errType  string
		contains string
	}{
		{"malformed", `{"household":`, http.StatusBadRequest, "invalid_request", "invalid request body"},
		{"unknown field", `{"household": {"salary": 1}}`, http.StatusBadRequest, "invalid_request", "unknown field"},
		{"negative income", `{"household": {"employmentIncome": -5, "province": "QC"}}`, http.StatusBadRequest, "invalid_request", "employment income cannot be negative"},
		{"unknown province", `{"household": {"employmentIncome": 5, "province": "ZZ"}}`, http.StatusBadRequest, "invalid_request", "unknown jurisdiction"},
		{"no rules for year", `{"fiscalYear": 2031, "household": ` + householdJSON + `}`, http.StatusNotFound, "not_found", "2031"},
	}

	h := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/tax", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			e := decodeError(t, w)
			assert.Equal(t, tt.errType, e.Error.Type)
			assert.Contains(t, e.Error.Message, tt.contains)
		})
	}
}

func TestCompare(t *testing.T) {
	body := `{"household": ` + householdJSON + `, "templates": ["rrsp_10k", "move_to_on"]}`
	w := do(t, newTestServer(t), http.MethodPost, "/api/compare", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var compSet compare.ComparisonSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &compSet))
	assert.Equal(t, "Baseline", compSet.BaseScenarioName)
	require.NotNil(t, compSet.BaseResult)
	assert.True(t, compSet.BaseResult.TotalTax.Equal(dec("38421")))
	require.Len(t, compSet.AlternativeResults, 2)
	assert.True(t, compSet.AlternativeResults[0].TotalTax.Equal(dec("34187")))
	assert.False(t, compSet.AlternativeResults[1].Modeled)
	assert.NotEmpty(t, compSet.Recommendations)
}

func TestCompare_Errors(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/compare", `{"household": `+householdJSON+`}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Message, "at least one template")

	w = do(t, h, http.MethodPost, "/api/compare", `{"household": `+householdJSON+`, "templates": ["retire_early"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Message, "template retire_early not found")
}

func TestSweep(t *testing.T) {
	body := `{"household": ` + householdJSON + `, "parameter": {"name": "rrsp_contribution", "minValue": 0, "maxValue": 20000, "steps": 3}}`
	w := do(t, newTestServer(t), http.MethodPost, "/api/sweep", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Points, 3)
	assert.True(t, result.Points[1].TaxDelta.Equal(dec("-4234")))

	w = do(t, newTestServer(t), http.MethodPost, "/api/sweep",
		`{"household": `+householdJSON+`, "parameter": {"name": "age", "minValue": 0, "maxValue": 1, "steps": 2}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Message, `unknown sweep parameter "age"`)
}

func TestOptimize(t *testing.T) {
	h := newTestServer(t)

	body := `{"household": ` + householdJSON + `, "goal": "target_tax", "constraints": {"targetTax": 35000}}`
	w := do(t, h, http.MethodPost, "/api/optimize", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result breakeven.OptimizationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.True(t, result.OptimalContribution.Equal(dec("8022")))
	assert.Equal(t, 14, result.Iterations)
}

func TestOptimize_AllGoals(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/optimize", `{"household": `+householdJSON+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var mg breakeven.MultiGoalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mg))
	require.Len(t, mg.Results, 2)
	require.NotNil(t, mg.LowestTax)
	assert.Equal(t, breakeven.GoalMinimizeTax, mg.LowestTax.Request.Goal)
}

func TestOptimize_Errors(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/optimize", `{"household": `+householdJSON+`, "goal": "target_tax"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Message, "requires a target tax")

	w = do(t, h, http.MethodPost, "/api/optimize", `{"household": `+householdJSON+`, "goal": "max_refund"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error.Message, "unsupported optimization goal")
}

func TestRules(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/rules/2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rules domain.RuleSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Equal(t, 2026, rules.Metadata.FiscalYear)
	assert.Len(t, rules.Federal.Brackets, 5)

	w = do(t, h, http.MethodGet, "/api/rules/2026?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "## Quebec (QC)")

	w = do(t, h, http.MethodGet, "/api/rules/2026?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fiscal_year: 2026")

	w = do(t, h, http.MethodGet, "/api/rules/2026?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/rules/latest", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/rules/1999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/rules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"years":[2026],"default":2026}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/health", "")
	do(t, h, http.MethodGet, "/api/rules/2026", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `taxplan_http_requests_total{code="200",route="/health"}`)
	assert.Contains(t, body, `route="/api/rules/{year}"`)
}

func TestMetrics_Disabled(t *testing.T) {
	h := NewServer(config.NewRuleLoader()).Handler()
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/tax", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
