package laterequest

import (
	"strings"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

const maxReasonLength = 1000

// ========================================
// SUBMIT
// ========================================

type SubmitRequest struct {
	EmployeeID     int64  `json:"employee_id"`
	AttendanceDate string `json:"attendance_date"`
	Reason         string `json:"reason"`
	WorkTimeID     *int64 `json:"work_time_id,omitempty"`
	attendance.PunchInput

	Request Request `json:"-"`
}

// Validate checks the payload and builds the pending Request on success.
func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	date, valid := validator.IsValidDate(r.AttendanceDate)
	if validator.IsEmpty(r.AttendanceDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_date",
			Message: "attendance_date is required",
		})
	} else if !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_date",
			Message: "attendance_date must be in YYYY-MM-DD format",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if !validator.MaxLength(r.Reason, maxReasonLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if r.WorkTimeID != nil && *r.WorkTimeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_time_id",
			Message: "work_time_id must be a positive number",
		})
	}

	punches, punchErrs := r.PunchInput.Parse()
	errs = append(errs, punchErrs...)
	if len(punchErrs) == 0 && punches.IsEmpty() {
		errs = append(errs, validator.ValidationError{
			Field:   "punches",
			Message: ErrEmptyPunches.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Request = Request{
		EmployeeID:     r.EmployeeID,
		AttendanceDate: date,
		Requested:      punches,
		Reason:         strings.TrimSpace(r.Reason),
		Status:         StatusPending,
		WorkTimeID:     r.WorkTimeID,
	}
	return nil
}

type SubmitResponse struct {
	Request LateRequestResponse `json:"request"`
	// Preview is informational only and is never persisted to attendance.
	Preview      *attendance.EvaluationResponse `json:"preview,omitempty"`
	PreviewError string                         `json:"preview_error,omitempty"`
}

// ========================================
// STATUS CHANGE
// ========================================

type UpdateStatusRequest struct {
	RequestID  int64  `json:"-"`
	Status     string `json:"status"`
	ReviewedBy string `json:"-"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.RequestID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if !validator.IsInSlice(r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
		})
	}

	if validator.IsEmpty(r.ReviewedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "reviewed_by",
			Message: "reviewer identity is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatusChangeResult reports the outcome of UpdateStatus.
type StatusChangeResult struct {
	Success        bool                           `json:"success"`
	RequestID      int64                          `json:"request_id"`
	Status         Status                         `json:"status"`
	PreviousStatus Status                         `json:"previous_status"`
	NoOp           bool                           `json:"no_op"`
	Message        string                         `json:"message"`
	Attendance     *attendance.AttendanceResponse `json:"attendance,omitempty"`
}

// ========================================
// QUERY
// ========================================

type LateRequestFilter struct {
	Status     *string `json:"status,omitempty"`
	EmployeeID *int64  `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LateRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, StatusValues) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected",
			})
		}
	}

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	hasStart := f.StartDate != nil && *f.StartDate != ""
	hasEnd := f.EndDate != nil && *f.EndDate != ""
	if hasStart {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if hasEnd {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if hasStart && hasEnd && len(errs) == 0 && !validator.IsDateRange(*f.StartDate, *f.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be on or after start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LateRequestResponse struct {
	ID                  int64    `json:"id"`
	EmployeeID          int64    `json:"employee_id"`
	EmployeeName        string   `json:"employee_name,omitempty"`
	AttendanceDate      string   `json:"attendance_date"`
	TimeInMorning       *string  `json:"time_in_morning"`
	TimeOutMorning      *string  `json:"time_out_morning"`
	TimeInAfternoon     *string  `json:"time_in_afternoon"`
	TimeOutAfternoon    *string  `json:"time_out_afternoon"`
	Reason              string   `json:"reason"`
	Status              string   `json:"status"`
	WorkTimeID          *int64   `json:"work_time_id,omitempty"`
	PreviewDaysCredited *float64 `json:"preview_days_credited,omitempty"`
	ReviewedBy          *string  `json:"reviewed_by,omitempty"`
	ReviewedAt          *string  `json:"reviewed_at,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

func NewLateRequestResponse(req Request) LateRequestResponse {
	var employeeName string
	if req.EmployeeName != nil {
		employeeName = *req.EmployeeName
	}

	var reviewedAt *string
	if req.ReviewedAt != nil {
		s := req.ReviewedAt.Format("2006-01-02 15:04:05")
		reviewedAt = &s
	}

	return LateRequestResponse{
		ID:                  req.ID,
		EmployeeID:          req.EmployeeID,
		EmployeeName:        employeeName,
		AttendanceDate:      req.AttendanceDate.Format(attendance.DateLayout),
		TimeInMorning:       req.Requested.TimeInMorning.Ptr(),
		TimeOutMorning:      req.Requested.TimeOutMorning.Ptr(),
		TimeInAfternoon:     req.Requested.TimeInAfternoon.Ptr(),
		TimeOutAfternoon:    req.Requested.TimeOutAfternoon.Ptr(),
		Reason:              req.Reason,
		Status:              string(req.Status),
		WorkTimeID:          req.WorkTimeID,
		PreviewDaysCredited: req.PreviewDaysCredited,
		ReviewedBy:          req.ReviewedBy,
		ReviewedAt:          reviewedAt,
		CreatedAt:           req.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:           req.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

type ListLateRequestResponse struct {
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
	Showing    string                `json:"showing"`
	Requests   []LateRequestResponse `json:"requests"`
}
