package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveEvaluation("approve", time.Now(), nil)
	m.StatusChange("approved", "ok")
	m.StatusChange("approved", "noop")
	m.Notification("late_request", errors.New("smtp down"))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["hris_attendance_evaluation_duration_seconds"])
	assert.True(t, names["hris_late_request_status_changes_total"])
	assert.True(t, names["hris_late_request_notifications_total"])
}

func TestMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
