package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Construct it once
// per process (promauto registers on the default registry); components accept
// a nil *Metrics and skip recording, which keeps unit tests free of registry
// state.
type Metrics struct {
	AuditEventsEmitted prometheus.Counter
	AuditEmitFailures  prometheus.Counter
	PaymentsProcessed  *prometheus.CounterVec
	CollectorIngested  prometheus.Counter
	CollectorRejected  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuditEventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audittrail_events_emitted_total",
			Help: "Total number of audit events successfully emitted",
		}),
		AuditEmitFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audittrail_emit_failures_total",
			Help: "Total number of audit event emission failures",
		}),
		PaymentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audittrail_payments_processed_total",
			Help: "Total number of payments processed, by final status",
		}, []string{"status"}),
		CollectorIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audittrail_collector_lines_ingested_total",
			Help: "Total number of audit lines ingested by the collector",
		}),
		CollectorRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "audittrail_collector_lines_rejected_total",
			Help: "Total number of malformed audit lines rejected by the collector",
		}),
	}
}

// IncEmitted increments the emitted-events counter.
func (m *Metrics) IncEmitted() {
	if m == nil {
		return
	}
	m.AuditEventsEmitted.Inc()
}

// IncEmitFailed increments the emit-failure counter.
func (m *Metrics) IncEmitFailed() {
	if m == nil {
		return
	}
	m.AuditEmitFailures.Inc()
}

// IncPayment increments the processed-payments counter for a status.
func (m *Metrics) IncPayment(status string) {
	if m == nil {
		return
	}
	m.PaymentsProcessed.WithLabelValues(status).Inc()
}

// IncIngested increments the collector ingested-lines counter.
func (m *Metrics) IncIngested() {
	if m == nil {
		return
	}
	m.CollectorIngested.Inc()
}

// IncRejected increments the collector rejected-lines counter.
func (m *Metrics) IncRejected() {
	if m == nil {
		return
	}
	m.CollectorRejected.Inc()
}
