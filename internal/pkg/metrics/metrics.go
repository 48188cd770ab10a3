package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the leave ledger. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	applications *prometheus.CounterVec
	decisions    *prometheus.CounterVec
	ledgerOps    *prometheus.CounterVec
	holidayCache *prometheus.CounterVec
	sideEffects  *prometheus.CounterVec
}

// New builds a private registry with the process collectors and the ledger metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leave_ledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_applications_total",
			Help: "Leave applications by outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_decisions_total",
			Help: "Leave request transitions by target status and outcome.",
		}, []string{"status", "outcome"}),
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_balance_operations_total",
			Help: "Balance ledger operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		holidayCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_holiday_cache_total",
			Help: "Holiday cache lookups by result.",
		}, []string{"result"}),
		sideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_ledger_side_effect_failures_total",
			Help: "Best-effort notification and audit failures.",
		}, []string{"kind"}),
	}
	registry.MustRegister(m.requestsTotal, m.requestDuration, m.applications, m.decisions, m.ledgerOps, m.holidayCache, m.sideEffects)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveApplication(outcome string) {
	if m == nil {
		return
	}
	m.applications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDecision(status, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(status, outcome).Inc()
}

func (m *Metrics) ObserveLedger(op, outcome string) {
	if m == nil {
		return
	}
	m.ledgerOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveHolidayCache(result string) {
	if m == nil {
		return
	}
	m.holidayCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSideEffectFailure(kind string) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
