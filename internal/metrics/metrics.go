// Package metrics provides Prometheus metrics collection for the change service.
package metrics

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// ChangeCalculationsTotal counts change calculations by strategy and outcome.
	ChangeCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_calculations_total",
			Help: "Total number of change calculations",
		},
		[]string{"strategy", "outcome"},
	)

	// ChangeCalculationDuration tracks change calculation duration.
	ChangeCalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "change_calculation_duration_seconds",
			Help:    "Change calculation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	// ChangeBacktrackSteps records how many greedy decisions were revisited per calculation.
	ChangeBacktrackSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "change_backtrack_steps",
			Help:    "Backtracking steps taken per change calculation",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)
)

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// UnmatchedPath labels requests that were not served by a Route.
const UnmatchedPath = "unmatched"

var standardMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
}

type routeKey struct{}

type routeHolder struct {
	path string
}

// Middleware collects HTTP metrics for every request passing through next.
// The path label is the one given to the Route that served the request, so
// client-chosen URLs never become label values.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		route := &routeHolder{path: UnmatchedPath}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeKey{}, route)))

		method := r.Method
		if route.path == UnmatchedPath && !slices.Contains(standardMethods, method) {
			method = "other"
		}
		statusCode := strconv.Itoa(rec.status)
		HTTPRequestDuration.WithLabelValues(method, route.path, statusCode).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.WithLabelValues(method, route.path, statusCode).Inc()
	})
}

// Route marks requests served by next with the given path label.
func Route(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route, ok := r.Context().Value(routeKey{}).(*routeHolder); ok {
			route.path = path
		}
		next.ServeHTTP(w, r)
	})
}

// RecordCalculation records metrics for a single change calculation.
func RecordCalculation(strategy, outcome string, backtrackSteps int, duration time.Duration) {
	ChangeCalculationDuration.Observe(duration.Seconds())
	ChangeCalculationsTotal.WithLabelValues(strategy, outcome).Inc()
	ChangeBacktrackSteps.Observe(float64(backtrackSteps))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
