package schedule

import (
	"context"
	"time"
)

// Resolver selects the WorkTime that applies to an employee on a date.
type Resolver interface {
	// Resolve honours overrideWorkTimeID before any schedule lookup.
	Resolve(ctx context.Context, employeeID int64, date time.Time, overrideWorkTimeID *int64) (ResolvedShift, error)
}
