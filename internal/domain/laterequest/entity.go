package laterequest

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
}

// Request is an employee's late-attendance request. At most one pending
// request exists per employee and date.
type Request struct {
	ID             int64
	EmployeeID     int64
	AttendanceDate time.Time
	Requested      attendance.Punches
	Reason         string
	Status         Status
	ReviewedBy     *string
	ReviewedAt     *time.Time

	// Original holds the attendance punches captured at approval time.
	// Nil when no attendance existed or the request was never approved.
	Original *attendance.Punches

	WorkTimeID          *int64
	PreviewDaysCredited *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// DTO
	EmployeeName *string
}

// CanTransition reports whether from -> to is a permitted state change.
// Same-state changes are handled by the caller as no-ops.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusRejected
	}
	return false
}
