package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFromConfig(t *testing.T) {
	p, err := PolicyFromConfig(config.AttendanceConfig{
		DefaultGraceMinutes:         10,
		EarlyArrivalLookbackMinutes: 45,
		MorningOutCutoff:            "11:30",
		AfternoonOutCutoff:          "16:45:00",
		ClampHolidayMultiplier:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, p.DefaultGrace)
	assert.Equal(t, 45*time.Minute, p.EarlyArrivalLookback)
	assert.Equal(t, "11:30:00", p.MorningOutCutoff.String())
	assert.Equal(t, "16:45:00", p.AfternoonOutCutoff.String())
	assert.True(t, p.ClampHolidayMultiplier)

	_, err = PolicyFromConfig(config.AttendanceConfig{MorningOutCutoff: "noon"})
	assert.Error(t, err)
}
