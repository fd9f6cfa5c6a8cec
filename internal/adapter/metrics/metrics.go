package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the business counters exposed at /metrics.
// Each instance owns its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	WebhookOutcomes   *prometheus.CounterVec
	CheckoutSessions  *prometheus.CounterVec
	AvailabilityCalls *prometheus.CounterVec
}

// New creates a Metrics instance with Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		WebhookOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendstack_webhook_events_total",
			Help: "Payment webhook deliveries by outcome (created, duplicate, ignored, rejected, failed)",
		}, []string{"outcome"}),
		CheckoutSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendstack_checkout_sessions_total",
			Help: "Checkout sessions created, split by whether a side effect degraded",
		}, []string{"result"}),
		AvailabilityCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sendstack_availability_candidates_total",
			Help: "Domain candidates checked by the availability probe, by verdict",
		}, []string{"verdict"}),
	}
}

// ObserveWebhook records one webhook delivery.
func (m *Metrics) ObserveWebhook(outcome string) {
	m.WebhookOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveCheckout records one checkout session.
func (m *Metrics) ObserveCheckout(degraded bool) {
	result := "healthy"
	if degraded {
		result = "degraded"
	}
	m.CheckoutSessions.WithLabelValues(result).Inc()
}

// ObserveAvailability counts available and taken candidates of one probe.
func (m *Metrics) ObserveAvailability(available, taken int) {
	m.AvailabilityCalls.WithLabelValues("available").Add(float64(available))
	m.AvailabilityCalls.WithLabelValues("taken").Add(float64(taken))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
