package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks external tool behavior. All methods are nil-safe so adapters
// can run without metrics in tests.
type Metrics struct {
	toolDuration *prometheus.HistogramVec
	toolFailures *prometheus.CounterVec
}

// NewMetrics creates and registers the ledger tool metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		toolDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custodia_ledger_tool_duration_seconds",
			Help:    "Wall-clock duration of ledger tool invocations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tool"}),
		toolFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_ledger_tool_failures_total",
			Help: "Ledger tool invocations that did not exit cleanly",
		}, []string{"tool"}),
	}
}

func (m *Metrics) ObserveToolDuration(tool string, seconds float64) {
	if m == nil {
		return
	}
	m.toolDuration.WithLabelValues(tool).Observe(seconds)
}

func (m *Metrics) RecordToolFailure(tool string) {
	if m == nil {
		return
	}
	m.toolFailures.WithLabelValues(tool).Inc()
}
