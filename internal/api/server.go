// Package api provides the HTTP server for taxplan.
// It exposes the tax engine, scenario comparison, sweeps and the contribution
// optimizer as JSON endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rgehrsitz/taxplan/internal/calculation"
	"github.com/rgehrsitz/taxplan/internal/config"
	"github.com/rgehrsitz/taxplan/internal/domain"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Server is the taxplan HTTP API server.
type Server struct {
	rules          *config.RuleLoader
	parser         *config.InputParser
	logger         calculation.Logger
	metricsEnabled bool
	requestLogging bool
}

// NewServer creates a new API server backed by a rule loader.
func NewServer(rules *config.RuleLoader) *Server {
	return &Server{
		rules:  rules,
		parser: config.NewInputParser(),
		logger: calculation.NopLogger{},
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// EnableRequestLogging enables chi's request logger.
func (s *Server) EnableRequestLogging() { s.requestLogging = true }

// SetLogger sets the logger passed to every engine. Nil restores the no-op logger.
func (s *Server) SetLogger(l calculation.Logger) {
	if l == nil {
		s.logger = calculation.NopLogger{}
		return
	}
	s.logger = l
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.requestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/tax", s.handleTax)
		r.Post("/compare", s.handleCompare)
		r.Post("/sweep", s.handleSweep)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/rules", s.handleListRules)
		r.Get("/rules/{year}", s.handleRules)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// engineFor builds an engine for the fiscal year of cfg
func (s *Server) engineFor(year int) (*calculation.Engine, error) {
	rules, err := s.rules.Load(year)
	if err != nil {
		return nil, err
	}
	engine := calculation.NewEngine(rules)
	engine.SetLogger(s.logger)
	return engine, nil
}

// prepare normalises and validates a household configuration and returns an
// engine for its fiscal year. On failure the error response is already written.
func (s *Server) prepare(w http.ResponseWriter, cfg *domain.Configuration) (*calculation.Engine, bool) {
	s.parser.ApplyDefaults(cfg)
	if err := s.parser.ValidateConfiguration(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	engine, err := s.engineFor(cfg.FiscalYear)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return engine, true
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	errType := "internal_error"
	switch {
	case status == http.StatusNotFound:
		errType = "not_found"
	case status < 500:
		errType = "invalid_request"
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    errType,
		},
	})
}
