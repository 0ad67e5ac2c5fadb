// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for backend calls
const (
	OutcomeSuccess    = "success"
	OutcomeHTTPError  = "http_error"
	OutcomeNetwork    = "network_error"
	OutcomeValidation = "validation_error"
)

// Metrics holds the gateway's Prometheus collectors
type Metrics struct {
	Registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiDuration  *prometheus.HistogramVec
	apiRetries   *prometheus.CounterVec
	breakerState *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	persistFailures *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of backend API requests.",
			},
			[]string{"method", "resource", "outcome"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storefront",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "resource"},
		),
		apiRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "api",
				Name:      "retries_total",
				Help:      "Retried backend API requests.",
			},
			[]string{"resource"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "storefront",
				Subsystem: "api",
				Name:      "breaker_open",
				Help:      "1 while the backend circuit breaker is open.",
			},
			[]string{"name"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of gateway HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storefront",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "storage",
				Name:      "persist_failures_total",
				Help:      "Client state writes that failed.",
			},
			[]string{"store"},
		),
	}

	m.Registry.MustRegister(
		m.apiRequests,
		m.apiDuration,
		m.apiRetries,
		m.breakerState,
		m.httpRequests,
		m.httpDuration,
		m.persistFailures,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Handler exposes the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveAPI records one backend call
func (m *Metrics) ObserveAPI(method, resource, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, resource, outcome).Inc()
	m.apiDuration.WithLabelValues(method, resource).Observe(d.Seconds())
}

// IncRetry counts a retried backend call
func (m *Metrics) IncRetry(resource string) {
	if m == nil {
		return
	}
	m.apiRetries.WithLabelValues(resource).Inc()
}

// SetBreakerOpen records the breaker state
func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(name).Set(v)
}

// ObserveHTTP records one gateway request
func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// IncPersistFailure counts a failed client state write
func (m *Metrics) IncPersistFailure(store string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(store).Inc()
}
