package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for LC screening.
type Metrics struct {
	// Audit outcomes by status and scoring profile
	Audits *prometheus.CounterVec

	AuditLatency prometheus.Histogram

	// Discrepancies by category and the profile's severity label
	Discrepancies *prometheus.CounterVec

	RiskScore prometheus.Histogram

	// Rules that failed and were reported as SYSTEM discrepancies
	RuleFaults *prometheus.CounterVec

	BatchSize prometheus.Histogram
}

// New creates the screening metrics and registers them with reg. A nil reg
// registers with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Audits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lcaudit_audits_total",
			Help: "Total audits by status and scoring profile",
		}, []string{"status", "profile"}),

		AuditLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lcaudit_audit_duration_seconds",
			Help:    "Duration of one audit including extraction, rules and scoring",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		Discrepancies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lcaudit_discrepancies_total",
			Help: "Discrepancies reported by category and severity label",
		}, []string{"category", "severity"}),

		RiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lcaudit_risk_score",
			Help:    "Distribution of audit risk scores",
			Buckets: []float64{0, 20, 40, 50, 70, 100},
		}),

		RuleFaults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lcaudit_rule_faults_total",
			Help: "Rule evaluations that failed and were reported as SYSTEM discrepancies",
		}, []string{"rule"}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lcaudit_batch_size",
			Help:    "Number of audits per batch request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

// IncrementAudit records an audit outcome.
func (m *Metrics) IncrementAudit(status, profile string) {
	if m != nil {
		m.Audits.WithLabelValues(status, profile).Inc()
	}
}

// ObserveAuditLatency records the duration of one audit.
func (m *Metrics) ObserveAuditLatency(d time.Duration) {
	if m != nil {
		m.AuditLatency.Observe(d.Seconds())
	}
}

// IncrementDiscrepancy records one reported discrepancy.
func (m *Metrics) IncrementDiscrepancy(category, severity string) {
	if m != nil {
		m.Discrepancies.WithLabelValues(category, severity).Inc()
	}
}

// ObserveRiskScore records an audit's risk score.
func (m *Metrics) ObserveRiskScore(score int) {
	if m != nil {
		m.RiskScore.Observe(float64(score))
	}
}

// IncrementRuleFault records a failed rule.
func (m *Metrics) IncrementRuleFault(rule string) {
	if m != nil {
		m.RuleFaults.WithLabelValues(rule).Inc()
	}
}

// ObserveBatchSize records the size of a batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
