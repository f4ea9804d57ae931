package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what reminder runs do
type Metrics struct {
	created      *prometheus.CounterVec
	deduplicated *prometheus.CounterVec
	failures     *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics registers the reminder collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_notifications_created_total",
			Help: "Reminder notifications created, by type.",
		}, []string{"type"}),
		deduplicated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_notifications_deduplicated_total",
			Help: "Reminders skipped because one was already sent today, by type.",
		}, []string{"type"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_issue_failures_total",
			Help: "Issues a reminder run could not handle, by reason.",
		}, []string{"reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reminder_run_duration_seconds",
			Help:    "Duration of reminder runs in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
