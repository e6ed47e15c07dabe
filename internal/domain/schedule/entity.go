package schedule

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
)

// WorkTime is a shift definition. Reference data, never mutated by the engine.
type WorkTime struct {
	ID           int64
	Name         string
	StartTime    timerange.ClockTime
	EndTime      timerange.ClockTime
	TotalMinutes int
	// ValidInStart/ValidInEnd bound the grace window for the first block.
	ValidInStart timerange.ClockTime
	ValidInEnd   timerange.ClockTime
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// ShiftSchedule binds an employee to a WorkTime.
type ShiftSchedule struct {
	ID             int64
	EmployeeID     int64
	WorkTimeID     int64
	EffectiveDate  time.Time
	EndDate        *time.Time
	RecurrenceType RecurrenceType
	DaysOfWeek     []string
	Priority       int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BreakWindow belongs to a WorkTime. A shift-split break separates credit blocks.
type BreakWindow struct {
	ID                 int64
	WorkTimeID         int64
	Name               string
	BreakStart         timerange.ClockTime
	BreakEnd           timerange.ClockTime
	ValidBreakOutStart timerange.ClockTime
	ValidBreakOutEnd   timerange.ClockTime
	ValidBreakInStart  timerange.ClockTime
	ValidBreakInEnd    timerange.ClockTime
	IsShiftSplit       bool
	SortOrder          int
}

type ResolutionSource string

const (
	ResolutionOverride ResolutionSource = "override"
	ResolutionSchedule ResolutionSource = "schedule"
	ResolutionDefault  ResolutionSource = "default"
)

// ResolvedShift is the WorkTime that applies to an employee on a date,
// with the breaks configured for it.
type ResolvedShift struct {
	WorkTime   WorkTime
	Breaks     []BreakWindow
	Source     ResolutionSource
	ScheduleID *int64
}
