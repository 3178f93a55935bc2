package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestsTotal counts API requests by route pattern and status code.
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "taxplan",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route and status code.",
}, []string{"route", "code"})

// RequestDuration tracks API latency by route pattern.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "taxplan",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// CalculationsTotal counts tax breakdowns computed on behalf of API callers.
var CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "taxplan",
	Name:      "calculations_total",
	Help:      "Tax breakdowns computed, by endpoint.",
}, []string{"endpoint"})

// OptimizerIterations records binary search iterations per optimization.
var OptimizerIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "taxplan",
	Name:      "optimizer_iterations",
	Help:      "Solver iterations per optimization, by goal.",
	Buckets:   []float64{1, 2, 4, 8, 12, 16, 24, 32, 50},
}, []string{"goal"})

// metricsMiddleware records request counts and latency under the matched
// chi route pattern, so path parameters do not explode label cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
