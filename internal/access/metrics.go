package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks workflow outcomes. All methods are nil-safe so the service
// can run without metrics in tests.
type Metrics struct {
	requestsCreated   prometheus.Counter
	decisions         *prometheus.CounterVec
	gateFailures      *prometheus.CounterVec
	resourcesReleased prometheus.Counter
}

// NewMetrics creates and registers the access workflow metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_access_requests_created_total",
			Help: "Access requests accepted into the pending state",
		}),
		decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_access_decisions_total",
			Help: "Committed decisions by final status",
		}, []string{"status"}),
		gateFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_access_ledger_gate_failures_total",
			Help: "Approvals blocked by the ledger gate, by stage",
		}, []string{"stage"}),
		resourcesReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_access_resources_released_total",
			Help: "Document contents released to requesting entities",
		}),
	}
}

func (m *Metrics) RecordRequestCreated() {
	if m == nil {
		return
	}
	m.requestsCreated.Inc()
}

func (m *Metrics) RecordDecision(status Status) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) RecordGateFailure(stage string) {
	if m == nil {
		return
	}
	m.gateFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordResourceReleased() {
	if m == nil {
		return
	}
	m.resourcesReleased.Inc()
}
