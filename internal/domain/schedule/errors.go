package schedule

import "errors"

var (
	ErrWorkTimeNotFound = errors.New("work time not found")
	ErrInvalidWorkTime  = errors.New("work time has no start or end time")

	// ErrNoShiftResolved is fatal to an approval: no schedule matched and no
	// default work time is configured.
	ErrNoShiftResolved = errors.New("no shift could be resolved for employee and date")
)
