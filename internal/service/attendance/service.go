package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/export"
)

// exportPageSize bounds each repository read while building an export.
const exportPageSize = 500

type AttendanceServiceImpl struct {
	txManager database.TxManager
	attendance.AttendanceRepository
	employee.EmployeeRepository
	evaluator attendance.Evaluator
}

func NewAttendanceService(
	txManager database.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	evaluator attendance.Evaluator,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		txManager:            txManager,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		evaluator:            evaluator,
	}
}

// RecordPunches implements attendance.AttendanceService.
// Raw punches are stored as-is; derived fields only change on Recompute or approval.
func (s *AttendanceServiceImpl) RecordPunches(ctx context.Context, req attendance.RecordPunchesRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !emp.IsActive {
		return attendance.AttendanceResponse{}, employee.ErrEmployeeInactive
	}

	rec, err := s.AttendanceRepository.UpsertPunches(ctx, req.EmployeeID, req.Date, req.Punches, attendance.SourceBiometrics)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record punches: %w", err)
	}

	name := emp.FullName
	rec.EmployeeName = &name
	return attendance.NewAttendanceResponse(rec), nil
}

// Recompute implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Recompute(ctx context.Context, req attendance.RecomputeRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var saved attendance.Record
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(ctx, req.EmployeeID, req.Date)
		if err != nil {
			return fmt.Errorf("failed to lock attendance: %w", err)
		}
		if rec == nil {
			return attendance.ErrAttendanceNotFound
		}

		ev, err := s.evaluator.Evaluate(ctx, attendance.EvaluationInput{
			EmployeeID: rec.EmployeeID,
			Date:       rec.AttendanceDate,
			Punches:    rec.Punches,
			WorkTimeID: req.WorkTimeID,
		})
		if err != nil {
			return err
		}

		ev.ApplyTo(rec)
		rec.Source = attendance.SourceRecompute

		saved, err = s.AttendanceRepository.Upsert(ctx, *rec)
		if err != nil {
			return fmt.Errorf("failed to save attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("attendance recomputed",
		"employee_id", saved.EmployeeID,
		"attendance_date", saved.AttendanceDate.Format(attendance.DateLayout),
		"days_credited", saved.DaysCredited,
	)
	return attendance.NewAttendanceResponse(saved), nil
}

// Preview implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Preview(ctx context.Context, req attendance.PreviewRequest) (attendance.EvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EvaluationResponse{}, err
	}

	ev, err := s.evaluator.Evaluate(ctx, attendance.EvaluationInput{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Punches:    req.Punches,
		WorkTimeID: req.WorkTimeID,
	})
	if err != nil {
		return attendance.EvaluationResponse{}, err
	}
	return attendance.NewEvaluationResponse(ev), nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id int64) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(rec), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.NewAttendanceResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

var exportHeaders = []string{
	"Employee ID", "Employee", "Date",
	"Time In (AM)", "Time Out (AM)", "Time In (PM)", "Time Out (PM)",
	"Work Time ID", "Break Minutes", "Net Work Minutes", "Rendered Minutes",
	"Late Deduction", "Deducted Days", "Days Credited", "Early Out", "Holiday", "Source",
}

var exportWidths = []float64{12, 28, 12, 12, 12, 12, 12, 12, 14, 16, 16, 14, 14, 14, 10, 10, 14}

// ExportAttendance implements attendance.AttendanceService. Pagination in
// the filter is ignored; every matching record is exported.
func (s *AttendanceServiceImpl) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter, w io.Writer) error {
	filter.Page = 1
	filter.Limit = exportPageSize
	if err := filter.Validate(); err != nil {
		return err
	}

	var rows [][]any
	for {
		records, total, err := s.AttendanceRepository.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list attendances for export: %w", err)
		}
		for _, rec := range records {
			rows = append(rows, exportRow(rec))
		}
		if len(records) == 0 || int64(filter.Page*filter.Limit) >= total {
			break
		}
		filter.Page++
	}

	return export.WriteXLSX(w, export.Sheet{
		Name:    "Attendance",
		Headers: exportHeaders,
		Widths:  exportWidths,
		Rows:    rows,
	})
}

func exportRow(rec attendance.Record) []any {
	var name string
	if rec.EmployeeName != nil {
		name = *rec.EmployeeName
	}
	var workTimeID any = ""
	if rec.WorkTimeID != nil {
		workTimeID = *rec.WorkTimeID
	}
	return []any{
		rec.EmployeeID,
		name,
		rec.AttendanceDate.Format(attendance.DateLayout),
		rec.Punches.TimeInMorning.String(),
		rec.Punches.TimeOutMorning.String(),
		rec.Punches.TimeInAfternoon.String(),
		rec.Punches.TimeOutAfternoon.String(),
		workTimeID,
		rec.AppliedBreakMinutes,
		rec.NetWorkMinutes,
		rec.ActualRenderedMinutes,
		rec.LateDeductionValue,
		rec.DeductedDays,
		rec.DaysCredited,
		yesNo(rec.EarlyOut),
		yesNo(rec.IsHolidayAttendance),
		string(rec.Source),
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
