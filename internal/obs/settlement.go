package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"vendorbook/internal/domain/settlement"
)

// SettlementMetrics counts session lifecycle events and submitted revenue.
// It implements settlement.Observer.
type SettlementMetrics struct {
	SessionsStarted  prometheus.Counter
	SessionsLocked   prometheus.Counter
	Submissions      *prometheus.CounterVec
	SubmittedRevenue prometheus.Counter
}

var _ settlement.Observer = (*SettlementMetrics)(nil)

// NewSettlementMetrics registers and returns settlement collectors.
func NewSettlementMetrics(namespace string, reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &SettlementMetrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_sessions_started_total",
			Help:      "Sessions opened by workers.",
		}),
		SessionsLocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_sessions_locked_total",
			Help:      "Sessions whose morning stock was locked.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_submissions_total",
			Help:      "Submissions by outcome (created or replayed).",
		}, []string{"result"}),
		SubmittedRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_submitted_revenue_total",
			Help:      "Revenue of newly stored daily sales records.",
		}),
	}
	mustRegister(reg, m.SessionsStarted, func(c prometheus.Collector) {
		if v, ok := c.(prometheus.Counter); ok {
			m.SessionsStarted = v
		}
	})
	mustRegister(reg, m.SessionsLocked, func(c prometheus.Collector) {
		if v, ok := c.(prometheus.Counter); ok {
			m.SessionsLocked = v
		}
	})
	mustRegister(reg, m.Submissions, func(c prometheus.Collector) {
		if v, ok := c.(*prometheus.CounterVec); ok {
			m.Submissions = v
		}
	})
	mustRegister(reg, m.SubmittedRevenue, func(c prometheus.Collector) {
		if v, ok := c.(prometheus.Counter); ok {
			m.SubmittedRevenue = v
		}
	})
	return m
}

// SessionStarted implements settlement.Observer.
func (m *SettlementMetrics) SessionStarted() { m.SessionsStarted.Inc() }

// SessionLocked implements settlement.Observer.
func (m *SettlementMetrics) SessionLocked() { m.SessionsLocked.Inc() }

// RecordSubmitted implements settlement.Observer.
func (m *SettlementMetrics) RecordSubmitted(rec *settlement.DailySalesRecord, created bool) {
	if !created {
		m.Submissions.WithLabelValues("replayed").Inc()
		return
	}
	m.Submissions.WithLabelValues("created").Inc()
	revenue, _ := rec.TotalRevenue.Float64()
	m.SubmittedRevenue.Add(revenue)
}
