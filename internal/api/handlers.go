package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/taxplan/internal/breakeven"
	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/compare"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
	"github.com/rgehrsitz/taxplan/internal/output"
)

// taxRequest is the body of POST /api/tax
type taxRequest struct {
	FiscalYear int                  `json:"fiscalYear"`
	Household  domain.ScenarioInput `json:"household"`
	Scenarios  []domain.Scenario    `json:"scenarios"`
}

func (req taxRequest) configuration() *domain.Configuration {
	return &domain.Configuration{FiscalYear: req.FiscalYear, Household: req.Household, Scenarios: req.Scenarios}
}

// compareRequest is the body of POST /api/compare
type compareRequest struct {
	taxRequest
	Base      string   `json:"base"`
	Templates []string `json:"templates"`
}

// sweepRequest is the body of POST /api/sweep
type sweepRequest struct {
	FiscalYear int                   `json:"fiscalYear"`
	Household  domain.ScenarioInput  `json:"household"`
	Parameter  domain.SweepParameter `json:"parameter"`
}

// optimizeRequest is the body of POST /api/optimize. An empty goal or "all"
// runs every goal.
type optimizeRequest struct {
	FiscalYear    int                   `json:"fiscalYear"`
	Household     domain.ScenarioInput  `json:"household"`
	Goal          string                `json:"goal"`
	Constraints   breakeven.Constraints `json:"constraints"`
	Tolerance     decimal.Decimal       `json:"tolerance"`
	MaxIterations int                   `json:"maxIterations"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"years":  config.AvailableYears(),
	})
}

func (s *Server) handleTax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := req.configuration()
	engine, ok := s.prepare(w, cfg)
	if !ok {
		return
	}

	results, err := engine.RunScenarios(r.Context(), cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	CalculationsTotal.WithLabelValues("tax").Add(float64(len(results.Results)))
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Templates) == 0 {
		writeError(w, http.StatusBadRequest, "at least one template is required")
		return
	}
	cfg := req.configuration()
	engine, ok := s.prepare(w, cfg)
	if !ok {
		return
	}

	compSet, err := compare.NewCompareEngine(engine).Compare(r.Context(), cfg, compare.CompareOptions{
		BaseScenarioName: req.Base,
		Templates:        req.Templates,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	CalculationsTotal.WithLabelValues("compare").Add(float64(len(compSet.AlternativeResults) + 1))
	writeJSON(w, http.StatusOK, compSet)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := &domain.Configuration{FiscalYear: req.FiscalYear, Household: req.Household}
	engine, ok := s.prepare(w, cfg)
	if !ok {
		return
	}

	result, err := calculation.NewSensitivityAnalyzer(engine).Sweep(r.Context(), cfg.Household, req.Parameter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	CalculationsTotal.WithLabelValues("sweep").Add(float64(len(result.Points) + 1))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := &domain.Configuration{FiscalYear: req.FiscalYear, Household: req.Household}
	engine, ok := s.prepare(w, cfg)
	if !ok {
		return
	}

	options := breakeven.DefaultSolverOptions()
	if req.Tolerance.IsPositive() {
		options.Tolerance = req.Tolerance
	}
	if req.MaxIterations > 0 {
		options.MaxIterations = req.MaxIterations
	}
	solver := breakeven.NewSolver(engine, options)

	if req.Goal == "" || req.Goal == "all" {
		mg, err := solver.OptimizeAllGoals(r.Context(), cfg.Household, req.Constraints)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		for _, res := range mg.Results {
			OptimizerIterations.WithLabelValues(string(res.Request.Goal)).Observe(float64(res.Iterations))
		}
		writeJSON(w, http.StatusOK, mg)
		return
	}

	result, err := solver.Optimize(r.Context(), breakeven.OptimizationRequest{
		Base:        cfg.Household,
		Goal:        breakeven.OptimizationGoal(req.Goal),
		Constraints: req.Constraints,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	OptimizerIterations.WithLabelValues(req.Goal).Observe(float64(result.Iterations))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"years":   config.AvailableYears(),
		"default": config.DefaultFiscalYear,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be a number")
		return
	}
	rules, err := s.rules.Load(year)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "json":
		writeJSON(w, http.StatusOK, rules)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(output.RulesReference(rules)))
	case "yaml", "toml":
		data, err := config.EncodeRuleSet(rules, format)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format "+format)
	}
}

// statusFor maps optimizer errors to a status code
func statusFor(err error) int {
	var oe *breakeven.OptimizeError
	if errors.As(err, &oe) && oe.Cause == nil {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
