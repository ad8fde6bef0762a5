// Package status exposes an optional local HTTP endpoint with health,
// session status, and Prometheus metrics for a running chat session.
package status

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flemzord/deskbot/internal/provider"
)

// Metrics tracks exchange-level counters on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	exchanges        prometheus.Counter
	exchangeErrors   *prometheus.CounterVec
	promptTokens     prometheus.Counter
	completionTokens prometheus.Counter
	latency          prometheus.Histogram
}

// NewMetrics creates a Metrics with all collectors registered.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		exchanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "deskbot_exchanges_total",
			Help: "Completed user/assistant exchanges.",
		}),
		exchangeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deskbot_exchange_errors_total",
			Help: "Failed exchanges by error class.",
		}, []string{"class"}),
		promptTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "deskbot_prompt_tokens_total",
			Help: "Prompt tokens reported by the completion service.",
		}),
		completionTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "deskbot_completion_tokens_total",
			Help: "Completion tokens reported by the completion service.",
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deskbot_exchange_duration_seconds",
			Help:    "Wall-clock duration of completed exchanges.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordExchange records a successful exchange with its token usage
// and wall-clock duration.
func (m *Metrics) RecordExchange(usage provider.TokenUsage, d time.Duration) {
	m.exchanges.Inc()
	m.promptTokens.Add(float64(usage.PromptTokens))
	m.completionTokens.Add(float64(usage.CompletionTokens))
	m.latency.Observe(d.Seconds())
}

// RecordError records a failed exchange under its error class.
func (m *Metrics) RecordError(class string) {
	m.exchangeErrors.WithLabelValues(class).Inc()
}

// Registry returns the underlying registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
