package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector records metrics into a private registry, so several
// collectors can coexist in one process (tests) without registration panics.
type PrometheusCollector struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec   // labels: method, route, status
	latency          *prometheus.HistogramVec // labels: method, route
	evaluations      *prometheus.CounterVec   // labels: activity, label
	upstreamFailures *prometheus.CounterVec   // labels: provider
}

// NewPrometheusCollector creates a collector whose metric names are prefixed
// with the lower-cased namespace. Go runtime and process collectors are
// registered alongside.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	ns := strings.ToLower(namespace)
	c := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "API requests by method, route pattern and status class.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "activity_evaluations_total",
			Help:      "Activity scores computed, by activity slug and label.",
		}, []string{"activity", "label"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "upstream_failures_total",
			Help:      "Failed weather provider calls by provider.",
		}, []string{"provider"}),
	}

	c.registry.MustRegister(
		c.requests,
		c.latency,
		c.evaluations,
		c.upstreamFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordRequest implements core.MetricsCollector.
func (c *PrometheusCollector) RecordRequest(method, route, status string, duration time.Duration) {
	c.requests.WithLabelValues(method, route, StatusClass(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEvaluation implements outlook.Metrics.
func (c *PrometheusCollector) RecordEvaluation(activity, label string) {
	c.evaluations.WithLabelValues(activity, label).Inc()
}

// RecordUpstreamFailure implements forecasts.FailureRecorder.
func (c *PrometheusCollector) RecordUpstreamFailure(provider string) {
	c.upstreamFailures.WithLabelValues(provider).Inc()
}

// Registry exposes the underlying registry.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
