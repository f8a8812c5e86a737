package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReportSubmitted(SourceMessage)
	m.ReportSubmitted(SourceMessage)
	m.ReminderSent("scheduled")
	m.ReminderFailed("scheduled")
	m.SetRosterSize(-100, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsSubmitted.WithLabelValues(SourceMessage)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersSent.WithLabelValues("scheduled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderFailures.WithLabelValues("scheduled")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rosterMembers.WithLabelValues("-100")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "workpilot_reports_submitted_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ReportSubmitted(SourceCommand)
	m.ReminderSent("manual")
	m.ReminderFailed("manual")
	m.SetRosterSize(1, 1)
}
