// Package metrics defines the prometheus collectors exported by WorkPilot.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workpilot"

// Report sources.
const (
	SourceCommand = "command"
	SourceMessage = "message"
)

// Metrics groups the collectors.
type Metrics struct {
	reportsSubmitted *prometheus.CounterVec
	remindersSent    *prometheus.CounterVec
	reminderFailures *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	rosterMembers    *prometheus.GaugeVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reportsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports accepted into a ledger, by source.",
		}, []string{"source"}),
		remindersSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder messages handed to the transport, by kind.",
		}, []string{"kind"}),
		reminderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_failures_total",
			Help:      "Reminder dispatches that failed, by kind.",
		}, []string{"kind"}),
		dispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_batch_duration_seconds",
			Help:      "Duration of batch reminder runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		rosterMembers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_members",
			Help:      "Members on each group's roster.",
		}, []string{"group_id"}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ReportSubmitted counts an accepted report.
func (m *Metrics) ReportSubmitted(source string) {
	if m == nil {
		return
	}
	m.reportsSubmitted.WithLabelValues(source).Inc()
}

// ReminderSent counts a delivered reminder.
func (m *Metrics) ReminderSent(kind string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(kind).Inc()
}

// ReminderFailed counts a failed reminder.
func (m *Metrics) ReminderFailed(kind string) {
	if m == nil {
		return
	}
	m.reminderFailures.WithLabelValues(kind).Inc()
}

// ObserveBatch records the duration of a batch run started at start.
func (m *Metrics) ObserveBatch(start time.Time) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(time.Since(start).Seconds())
}

// SetRosterSize records the member count of a group.
func (m *Metrics) SetRosterSize(groupID int64, n int) {
	if m == nil {
		return
	}
	m.rosterMembers.WithLabelValues(strconv.FormatInt(groupID, 10)).Set(float64(n))
}
