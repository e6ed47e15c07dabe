package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
)

// Policy holds the attendance rules that are not stored per shift.
type Policy struct {
	// DefaultGrace is added to a block start when no valid-in boundary is configured.
	DefaultGrace time.Duration
	// EarlyArrivalLookback lets a worked interval starting before a block still count for it.
	EarlyArrivalLookback time.Duration
	MorningOutCutoff     timerange.ClockTime
	AfternoonOutCutoff   timerange.ClockTime
	// ClampHolidayMultiplier caps multiplied holiday credit at 1.0.
	ClampHolidayMultiplier bool
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultGrace:         5 * time.Minute,
		EarlyArrivalLookback: 30 * time.Minute,
		MorningOutCutoff:     timerange.Clock(12, 0, 0),
		AfternoonOutCutoff:   timerange.Clock(17, 0, 0),
	}
}

// PolicyFromConfig builds a Policy from environment configuration.
func PolicyFromConfig(cfg config.AttendanceConfig) (Policy, error) {
	morning, err := timerange.ParseClock(cfg.MorningOutCutoff)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid morning out cutoff: %w", err)
	}
	afternoon, err := timerange.ParseClock(cfg.AfternoonOutCutoff)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid afternoon out cutoff: %w", err)
	}

	p := DefaultPolicy()
	p.DefaultGrace = time.Duration(cfg.DefaultGraceMinutes) * time.Minute
	p.EarlyArrivalLookback = time.Duration(cfg.EarlyArrivalLookbackMinutes) * time.Minute
	if morning.Valid() {
		p.MorningOutCutoff = morning
	}
	if afternoon.Valid() {
		p.AfternoonOutCutoff = afternoon
	}
	p.ClampHolidayMultiplier = cfg.ClampHolidayMultiplier
	return p, nil
}
