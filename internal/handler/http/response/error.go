package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrReviewerAccessRequired),
		errors.Is(err, user.ErrForeignEmployee):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Unprocessable(w, "EMPLOYEE_INACTIVE", "Employee is not active")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrNoShiftResolved):
		Unprocessable(w, "SHIFT_NOT_RESOLVED", "No shift could be resolved for this employee and date")
	case errors.Is(err, schedule.ErrInvalidWorkTime):
		Unprocessable(w, "INVALID_WORK_TIME", err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Late request domain errors
	case errors.Is(err, laterequest.ErrRequestNotFound):
		NotFound(w, "Late attendance request not found")
	case errors.Is(err, laterequest.ErrInvalidTransition):
		Conflict(w, err.Error())

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
