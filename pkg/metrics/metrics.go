// Package metrics registers the Prometheus collectors a generation run
// exercises directly (no HTTP surface required), plus the HTTP request
// collectors the thin gin adapter uses. Grounded on the teacher's
// MetricsService: a private registry, one promhttp handler, and a handful
// of named collectors registered at construction time.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps every collector a generation run or the HTTP adapter
// touches.
type Registry struct {
	registry *prometheus.Registry
	handler  http.Handler

	generationDuration *prometheus.HistogramVec
	stageDuration       *prometheus.HistogramVec
	unplaceableTotal    prometheus.Counter
	conflictsTotal      *prometheus.CounterVec
	optimizerIterations prometheus.Histogram

	httpRequestDuration *prometheus.HistogramVec
	httpRequestTotal    *prometheus.CounterVec
}

// New constructs and registers every collector.
func New() *Registry {
	registry := prometheus.NewRegistry()

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Total wall-clock duration of a Generate run",
		Buckets: prometheus.DefBuckets,
	}, []string{"preset"})

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_stage_duration_seconds",
		Help:    "Per-stage duration within a Generate run",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	unplaceableTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_unplaceable_sessions_total",
		Help: "Total sessions the placement engine could not place, across all runs",
	})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_total",
		Help: "Total sessions whose placement search rejected at least one candidate for a conflict, by kind",
	}, []string{"kind"})

	optimizerIterations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_optimizer_iterations",
		Help:    "Number of move/swap sweeps the local optimizer ran before terminating",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200, 500},
	})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpRequestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registry.MustRegister(
		generationDuration, stageDuration, unplaceableTotal, conflictsTotal, optimizerIterations,
		httpRequestDuration, httpRequestTotal,
	)

	return &Registry{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		generationDuration:  generationDuration,
		stageDuration:       stageDuration,
		unplaceableTotal:    unplaceableTotal,
		conflictsTotal:      conflictsTotal,
		optimizerIterations: optimizerIterations,
		httpRequestDuration: httpRequestDuration,
		httpRequestTotal:    httpRequestTotal,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// ObserveGeneration records the total duration of one Generate run.
func (r *Registry) ObserveGeneration(preset string, d time.Duration) {
	if r == nil {
		return
	}
	r.generationDuration.WithLabelValues(preset).Observe(d.Seconds())
}

// ObserveStage records one stage's (snapshot/placement/optimize) duration.
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddUnplaceable increments the unplaceable-sessions counter.
func (r *Registry) AddUnplaceable(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.unplaceableTotal.Add(float64(n))
}

// AddConflict increments the conflicts counter for one rejection kind.
func (r *Registry) AddConflict(kind string) {
	if r == nil {
		return
	}
	r.conflictsTotal.WithLabelValues(kind).Inc()
}

// ObserveOptimizerIterations records how many sweeps the optimizer ran.
func (r *Registry) ObserveOptimizerIterations(n int) {
	if r == nil {
		return
	}
	r.optimizerIterations.Observe(float64(n))
}

// ObserveHTTPRequest records one completed HTTP request.
func (r *Registry) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	label := http.StatusText(status)
	if label == "" {
		label = "unknown"
	}
	r.httpRequestDuration.WithLabelValues(method, path, label).Observe(d.Seconds())
	r.httpRequestTotal.WithLabelValues(method, path, label).Inc()
}
