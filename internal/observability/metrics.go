package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions   prometheus.Gauge
	SessionEvents    *prometheus.CounterVec
	WSMessages       *prometheus.CounterVec
	Turns            *prometheus.CounterVec
	Escalations      prometheus.Counter
	LiveAnalyses     prometheus.Counter
	DebounceCanceled prometheus.Counter
	ThinkingLatency  prometheus.Histogram
}

// NewMetrics registers instruments on the default registry.
func NewMetrics(namespace string) *Metrics {
	return newMetrics(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers on a caller-supplied registry; used by
// tests to avoid duplicate registration panics.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	return newMetrics(namespace, reg)
}

func newMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active dialogue sessions.",
		}),
		SessionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns by outcome.",
		}, []string{"outcome"}),
		Escalations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Crisis escalations triggered.",
		}),
		LiveAnalyses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_analyses_total",
			Help:      "Executed live-analysis passes over partial text.",
		}),
		DebounceCanceled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debounce_canceled_total",
			Help:      "Pending live analyses superseded before running.",
		}),
		ThinkingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "thinking_latency_ms",
			Help:      "Latency of a turn's thinking phase in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

func (m *Metrics) ObserveThinkingLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.ThinkingLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
