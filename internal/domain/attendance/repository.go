package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Records are keyed by (employee_id, attendance_date).
type AttendanceRepository interface {
	GetByID(ctx context.Context, id int64) (Record, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*Record, error)

	// GetByEmployeeAndDateForUpdate locks the row until the enclosing transaction ends.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID int64, date time.Time) (*Record, error)

	// Upsert writes punches and every computed field.
	Upsert(ctx context.Context, record Record) (Record, error)

	// UpsertPunches writes raw punches only, leaving computed fields untouched.
	UpsertPunches(ctx context.Context, employeeID int64, date time.Time, punches Punches, source Source) (Record, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)
}
