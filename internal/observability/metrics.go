package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes prometheus counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	sosTransitions  *prometheus.CounterVec
	remoteFailures  *prometheus.CounterVec
	complaintsFiled *prometheus.CounterVec
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_http_requests_total",
			Help: "Local API requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raksha_http_request_duration_seconds",
			Help:    "Local API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_http_errors_total",
			Help: "Local API errors by route, method and domain error code.",
		}, []string{"path", "method", "code"}),
		sosTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_sos_transitions_total",
			Help: "SOS lifecycle transitions.",
		}, []string{"transition"}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_remote_failures_total",
			Help: "Backend calls that failed and fell back to local-only behavior.",
		}, []string{"endpoint", "kind"}),
		complaintsFiled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raksha_complaints_filed_total",
			Help: "Complaints filed, by sync outcome.",
		}, []string{"mode"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.errors,
		m.sosTransitions,
		m.remoteFailures,
		m.complaintsFiled,
		prometheus.NewGoCollector(),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordSOSTransition counts triggered, location_updated and resolved transitions.
func (m *Metrics) RecordSOSTransition(transition string) {
	if m == nil {
		return
	}
	m.sosTransitions.WithLabelValues(transition).Inc()
}

// RecordRemoteFailure counts a degraded backend call.
func (m *Metrics) RecordRemoteFailure(endpoint, kind string) {
	if m == nil {
		return
	}
	m.remoteFailures.WithLabelValues(endpoint, kind).Inc()
}

// RecordComplaintFiled counts complaints by how far they got.
func (m *Metrics) RecordComplaintFiled(mode string) {
	if m == nil {
		return
	}
	m.complaintsFiled.WithLabelValues(mode).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
