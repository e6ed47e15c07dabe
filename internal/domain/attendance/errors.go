package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidPunchTime   = errors.New("invalid punch time")
)
