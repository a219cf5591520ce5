package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for license authentications.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeUnknown = "unknown"
	OutcomeError   = "error"
)

type Metrics struct {
	registry     *prometheus.Registry
	authTotal    *prometheus.CounterVec
	licenseOps   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licenseserver",
			Name:      "authentications_total",
			Help:      "License authentications by outcome.",
		}, []string{"outcome"}),
		licenseOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licenseserver",
			Name:      "license_operations_total",
			Help:      "Completed license lifecycle operations.",
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licenseserver",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "licenseserver",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authTotal,
		m.licenseOps,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveAuth(outcome string) {
	m.authTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLicenseOp(op string) {
	m.licenseOps.WithLabelValues(op).Inc()
}

// Instrument counts and times every request passing through next.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.httpRequests,
		promhttp.InstrumentHandlerDuration(m.httpDuration, next))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
