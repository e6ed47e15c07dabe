package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	evaluationDuration *prometheus.HistogramVec
	statusChanges      *prometheus.CounterVec
	notifications      *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hris",
			Subsystem: "attendance",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating one employee day.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"caller", "outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hris",
			Subsystem: "late_request",
			Name:      "status_changes_total",
			Help:      "Late request status changes by target status and outcome.",
		}, []string{"status", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hris",
			Subsystem: "late_request",
			Name:      "notifications_total",
			Help:      "HR notification attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.evaluationDuration, m.statusChanges, m.notifications)
	return m
}

// Nop returns collectors bound to a private registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveEvaluation(caller string, started time.Time, err error) {
	m.evaluationDuration.WithLabelValues(caller, outcome(err)).Observe(time.Since(started).Seconds())
}

// StatusChange counts a lifecycle transition. outcome is "ok", "noop" or "error".
func (m *Metrics) StatusChange(status, result string) {
	m.statusChanges.WithLabelValues(status, result).Inc()
}

func (m *Metrics) Notification(kind string, err error) {
	m.notifications.WithLabelValues(kind, outcome(err)).Inc()
}
