package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
)

type Source string

const (
	SourceBiometrics  Source = "biometrics"
	SourceLateRequest Source = "late_request"
	SourceRecompute   Source = "recompute"
)

// Punches are the four raw clock events of a working day.
type Punches struct {
	TimeInMorning    timerange.ClockTime
	TimeOutMorning   timerange.ClockTime
	TimeInAfternoon  timerange.ClockTime
	TimeOutAfternoon timerange.ClockTime
}

func (p Punches) IsEmpty() bool {
	return !p.TimeInMorning.Valid() && !p.TimeOutMorning.Valid() &&
		!p.TimeInAfternoon.Valid() && !p.TimeOutAfternoon.Valid()
}

// Record is one attendance row per employee and date.
type Record struct {
	ID             int64
	EmployeeID     int64
	AttendanceDate time.Time
	Punches        Punches
	WorkTimeID     *int64

	// Computed by the engine
	AppliedBreakMinutes   int
	NetWorkMinutes        int
	ActualRenderedMinutes int
	DaysCredited          float64
	EarlyOut              bool
	IsHolidayAttendance   bool
	LateDeductionID       *int64
	LateDeductionValue    float64
	DeductedDays          float64
	LateDebug             *LateDeductionTrace

	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// Evaluation is the engine result for one employee and date.
type Evaluation struct {
	EmployeeID            int64
	AttendanceDate        time.Time
	WorkTimeID            int64
	WorkTimeName          string
	ShiftSource           string
	AppliedBreakMinutes   int
	NetWorkMinutes        int
	ActualRenderedMinutes int
	AdjustedDays          float64
	HolidayID             *int64
	HolidayApplied        bool
	EarlyOut              bool
	Late                  LateDeductionTrace
	DeductedDays          float64
	DaysCredited          float64
}

// ApplyTo copies computed fields onto rec.
func (e Evaluation) ApplyTo(rec *Record) {
	workTimeID := e.WorkTimeID
	rec.WorkTimeID = &workTimeID
	rec.AppliedBreakMinutes = e.AppliedBreakMinutes
	rec.NetWorkMinutes = e.NetWorkMinutes
	rec.ActualRenderedMinutes = e.ActualRenderedMinutes
	rec.DaysCredited = e.DaysCredited
	rec.EarlyOut = e.EarlyOut
	rec.IsHolidayAttendance = e.HolidayID != nil
	rec.LateDeductionID = e.Late.PrimaryRuleID()
	rec.LateDeductionValue = e.Late.TotalFraction
	rec.DeductedDays = e.DeductedDays
	late := e.Late
	rec.LateDebug = &late
}

// ClearComputed resets every engine-derived field.
func (r *Record) ClearComputed() {
	r.AppliedBreakMinutes = 0
	r.NetWorkMinutes = 0
	r.ActualRenderedMinutes = 0
	r.DaysCredited = 0
	r.EarlyOut = false
	r.IsHolidayAttendance = false
	r.LateDeductionID = nil
	r.LateDeductionValue = 0
	r.DeductedDays = 0
	r.LateDebug = nil
}
