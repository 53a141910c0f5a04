package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus series exported by the API and worker.
type Metrics struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	calculationsTotal *prometheus.CounterVec
	interpretTotal    *prometheus.CounterVec
	jobsTotal         *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
}

// NewMetrics initialises the registry and base series.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilequote_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tilequote_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilequote_quote_calculations_total",
		Help: "Quote totals computed by operation.",
	}, []string{"operation"})
	interpret := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilequote_interpret_requests_total",
		Help: "Free-text interpretation calls by outcome.",
	}, []string{"outcome"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilequote_jobs_total",
		Help: "Background tasks processed by type and outcome.",
	}, []string{"task", "outcome"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tilequote_job_duration_seconds",
		Help:    "Background task run time by type.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"task"})
	registry.MustRegister(requests, duration, calculations, interpret, jobs, jobDuration)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		calculationsTotal: calculations,
		interpretTotal:    interpret,
		jobsTotal:         jobs,
		jobDuration:       jobDuration,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RecordCalculation counts one totals computation.
func (m *Metrics) RecordCalculation(operation string) {
	if m == nil {
		return
	}
	m.calculationsTotal.WithLabelValues(operation).Inc()
}

// RecordInterpret counts one interpreter call.
func (m *Metrics) RecordInterpret(err error) {
	if m == nil {
		return
	}
	m.interpretTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordJob counts one processed background task.
func (m *Metrics) RecordJob(task string, err error) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(task, outcome(err)).Inc()
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
