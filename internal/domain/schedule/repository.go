package schedule

import (
	"context"
	"time"
)

// WorkTimeRepository reads shift reference data. The engine never writes to it.
type WorkTimeRepository interface {
	GetByID(ctx context.Context, id int64) (WorkTime, error)

	// GetDefault returns the work time flagged is_default, or ErrWorkTimeNotFound.
	GetDefault(ctx context.Context) (WorkTime, error)

	// ListBreaks returns breaks of a work time ordered by break start.
	ListBreaks(ctx context.Context, workTimeID int64) ([]BreakWindow, error)
}

type ShiftScheduleRepository interface {
	// ListActiveForDate returns active schedules whose effective range covers date.
	ListActiveForDate(ctx context.Context, employeeID int64, date time.Time) ([]ShiftSchedule, error)
}
