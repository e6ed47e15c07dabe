package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

const DateLayout = "2006-01-02"

// ========================================
// PUNCH INPUT
// ========================================

// PunchInput carries raw punch strings (HH:MM:SS). Empty or "00:00:00" means no punch.
type PunchInput struct {
	TimeInMorning    *string `json:"time_in_morning,omitempty"`
	TimeOutMorning   *string `json:"time_out_morning,omitempty"`
	TimeInAfternoon  *string `json:"time_in_afternoon,omitempty"`
	TimeOutAfternoon *string `json:"time_out_afternoon,omitempty"`
}

// Parse converts the raw strings, collecting one validation error per bad field.
func (p PunchInput) Parse() (Punches, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	parse := func(field string, raw *string) timerange.ClockTime {
		if raw == nil {
			return timerange.NoPunch
		}
		c, err := timerange.ParsePunch(*raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in HH:MM:SS format",
			})
		}
		return c
	}

	punches := Punches{
		TimeInMorning:    parse("time_in_morning", p.TimeInMorning),
		TimeOutMorning:   parse("time_out_morning", p.TimeOutMorning),
		TimeInAfternoon:  parse("time_in_afternoon", p.TimeInAfternoon),
		TimeOutAfternoon: parse("time_out_afternoon", p.TimeOutAfternoon),
	}
	return punches, errs
}

func validateEmployeeAndDate(employeeID int64, date string) (time.Time, validator.ValidationErrors) {
	var errs validator.ValidationErrors
	if employeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	parsed, valid := validator.IsValidDate(date)
	if validator.IsEmpty(date) {
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
	return parsed, errs
}

// ========================================
// ATTENDANCE DTOs
// ========================================

// RecordPunchesRequest is one normalized row from the biometrics importer.
type RecordPunchesRequest struct {
	EmployeeID     int64  `json:"employee_id"`
	AttendanceDate string `json:"attendance_date"`
	PunchInput

	Date    time.Time `json:"-"`
	Punches Punches   `json:"-"`
}

func (r *RecordPunchesRequest) Validate() error {
	date, errs := validateEmployeeAndDate(r.EmployeeID, r.AttendanceDate)
	punches, punchErrs := r.PunchInput.Parse()
	errs = append(errs, punchErrs...)

	if len(errs) > 0 {
		return errs
	}

	r.Date = date
	r.Punches = punches
	return nil
}

type RecomputeRequest struct {
	EmployeeID     int64  `json:"employee_id"`
	AttendanceDate string `json:"attendance_date"`
	// WorkTimeID forces a shift; otherwise the shift is resolved again.
	WorkTimeID *int64 `json:"work_time_id,omitempty"`

	Date time.Time `json:"-"`
}

func (r *RecomputeRequest) Validate() error {
	date, errs := validateEmployeeAndDate(r.EmployeeID, r.AttendanceDate)
	if r.WorkTimeID != nil && *r.WorkTimeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_time_id",
			Message: "work_time_id must be a positive number",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	r.Date = date
	return nil
}

type PreviewRequest struct {
	EmployeeID     int64  `json:"employee_id"`
	AttendanceDate string `json:"attendance_date"`
	WorkTimeID     *int64 `json:"work_time_id,omitempty"`
	PunchInput

	Date    time.Time `json:"-"`
	Punches Punches   `json:"-"`
}

func (r *PreviewRequest) Validate() error {
	date, errs := validateEmployeeAndDate(r.EmployeeID, r.AttendanceDate)
	punches, punchErrs := r.PunchInput.Parse()
	errs = append(errs, punchErrs...)

	if r.WorkTimeID != nil && *r.WorkTimeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "work_time_id",
			Message: "work_time_id must be a positive number",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Date = date
	r.Punches = punches
	return nil
}

type AttendanceResponse struct {
	ID                    int64               `json:"id"`
	EmployeeID            int64               `json:"employee_id"`
	EmployeeName          string              `json:"employee_name,omitempty"`
	AttendanceDate        string              `json:"attendance_date"`
	TimeInMorning         *string             `json:"time_in_morning"`
	TimeOutMorning        *string             `json:"time_out_morning"`
	TimeInAfternoon       *string             `json:"time_in_afternoon"`
	TimeOutAfternoon      *string             `json:"time_out_afternoon"`
	WorkTimeID            *int64              `json:"work_time_id,omitempty"`
	AppliedBreakMinutes   int                 `json:"applied_break_minutes"`
	NetWorkMinutes        int                 `json:"net_work_minutes"`
	ActualRenderedMinutes int                 `json:"actual_rendered_minutes"`
	DaysCredited          float64             `json:"days_credited"`
	EarlyOut              bool                `json:"early_out"`
	IsHolidayAttendance   bool                `json:"is_holiday_attendance"`
	LateDeductionID       *int64              `json:"late_deduction_id,omitempty"`
	LateDeductionValue    float64             `json:"late_deduction_value"`
	DeductedDays          float64             `json:"deducted_days"`
	LateDebug             *LateDeductionTrace `json:"late_debug,omitempty"`
	Source                string              `json:"source"`
	CreatedAt             string              `json:"created_at"`
	UpdatedAt             string              `json:"updated_at"`
}

// NewAttendanceResponse converts a Record to AttendanceResponse
func NewAttendanceResponse(rec Record) AttendanceResponse {
	var employeeName string
	if rec.EmployeeName != nil {
		employeeName = *rec.EmployeeName
	}

	return AttendanceResponse{
		ID:                    rec.ID,
		EmployeeID:            rec.EmployeeID,
		EmployeeName:          employeeName,
		AttendanceDate:        rec.AttendanceDate.Format(DateLayout),
		TimeInMorning:         rec.Punches.TimeInMorning.Ptr(),
		TimeOutMorning:        rec.Punches.TimeOutMorning.Ptr(),
		TimeInAfternoon:       rec.Punches.TimeInAfternoon.Ptr(),
		TimeOutAfternoon:      rec.Punches.TimeOutAfternoon.Ptr(),
		WorkTimeID:            rec.WorkTimeID,
		AppliedBreakMinutes:   rec.AppliedBreakMinutes,
		NetWorkMinutes:        rec.NetWorkMinutes,
		ActualRenderedMinutes: rec.ActualRenderedMinutes,
		DaysCredited:          rec.DaysCredited,
		EarlyOut:              rec.EarlyOut,
		IsHolidayAttendance:   rec.IsHolidayAttendance,
		LateDeductionID:       rec.LateDeductionID,
		LateDeductionValue:    rec.LateDeductionValue,
		DeductedDays:          rec.DeductedDays,
		LateDebug:             rec.LateDebug,
		Source:                string(rec.Source),
		CreatedAt:             rec.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:             rec.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

type EvaluationResponse struct {
	EmployeeID            int64              `json:"employee_id"`
	AttendanceDate        string             `json:"attendance_date"`
	WorkTimeID            int64              `json:"work_time_id"`
	WorkTimeName          string             `json:"work_time_name"`
	ShiftSource           string             `json:"shift_source"`
	AppliedBreakMinutes   int                `json:"applied_break_minutes"`
	CreditBasisMinutes    int                `json:"credit_basis_minutes"`
	ActualRenderedMinutes int                `json:"actual_rendered_minutes"`
	AdjustedDays          float64            `json:"adjusted_days"`
	HolidayApplied        bool               `json:"holiday_applied"`
	EarlyOut              bool               `json:"early_out"`
	DeductedDays          float64            `json:"deducted_days"`
	DaysCredited          float64            `json:"days_credited"`
	LateDebug             LateDeductionTrace `json:"late_debug"`
}

func NewEvaluationResponse(ev Evaluation) EvaluationResponse {
	return EvaluationResponse{
		EmployeeID:            ev.EmployeeID,
		AttendanceDate:        ev.AttendanceDate.Format(DateLayout),
		WorkTimeID:            ev.WorkTimeID,
		WorkTimeName:          ev.WorkTimeName,
		ShiftSource:           ev.ShiftSource,
		AppliedBreakMinutes:   ev.AppliedBreakMinutes,
		CreditBasisMinutes:    ev.NetWorkMinutes,
		ActualRenderedMinutes: ev.ActualRenderedMinutes,
		AdjustedDays:          ev.AdjustedDays,
		HolidayApplied:        ev.HolidayApplied,
		EarlyOut:              ev.EarlyOut,
		DeductedDays:          ev.DeductedDays,
		DaysCredited:          ev.DaysCredited,
		LateDebug:             ev.Late,
	}
}

type AttendanceFilter struct {
	EmployeeID *int64  `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

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
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 500",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
