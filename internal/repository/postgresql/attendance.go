package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.attendance_date,
	a.time_in_morning, a.time_out_morning, a.time_in_afternoon, a.time_out_afternoon,
	a.work_time_id, a.applied_break_minutes, a.net_work_minutes, a.actual_rendered_minutes,
	a.days_credited, a.early_out, a.is_holiday_attendance,
	a.late_deduction_id, a.late_deduction_value, a.deducted_days, a.late_debug,
	a.source, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row, extra ...any) (attendance.Record, error) {
	var rec attendance.Record
	var punches punchColumns
	var lateDebug []byte

	dest := []any{&rec.ID, &rec.EmployeeID, &rec.AttendanceDate}
	dest = append(dest, punches.dest()...)
	dest = append(dest,
		&rec.WorkTimeID, &rec.AppliedBreakMinutes, &rec.NetWorkMinutes, &rec.ActualRenderedMinutes,
		&rec.DaysCredited, &rec.EarlyOut, &rec.IsHolidayAttendance,
		&rec.LateDeductionID, &rec.LateDeductionValue, &rec.DeductedDays, &lateDebug,
		&rec.Source, &rec.CreatedAt, &rec.UpdatedAt,
	)
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return attendance.Record{}, err
	}

	rec.Punches = punches.punches()
	if len(lateDebug) > 0 {
		var trace attendance.LateDeductionTrace
		if err := json.Unmarshal(lateDebug, &trace); err != nil {
			return attendance.Record{}, fmt.Errorf("failed to decode late_debug: %w", err)
		}
		rec.LateDebug = &trace
	}
	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id int64) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `, e.full_name
		FROM attendances a
		INNER JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1`

	var employeeName string
	rec, err := scanAttendance(q.QueryRow(ctx, query, id), &employeeName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	rec.EmployeeName = &employeeName
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	return r.getByEmployeeAndDate(ctx, employeeID, date, false)
}

// GetByEmployeeAndDateForUpdate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	return r.getByEmployeeAndDate(ctx, employeeID, date, true)
}

func (r *attendanceRepository) getByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time, forUpdate bool) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.attendance_date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &rec, nil
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	var lateDebug []byte
	if rec.LateDebug != nil {
		encoded, err := json.Marshal(rec.LateDebug)
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to encode late_debug: %w", err)
		}
		lateDebug = encoded
	}

	query := `
		INSERT INTO attendances (
			employee_id, attendance_date,
			time_in_morning, time_out_morning, time_in_afternoon, time_out_afternoon,
			work_time_id, applied_break_minutes, net_work_minutes, actual_rendered_minutes,
			days_credited, early_out, is_holiday_attendance,
			late_deduction_id, late_deduction_value, deducted_days, late_debug, source
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
			time_in_morning = EXCLUDED.time_in_morning,
			time_out_morning = EXCLUDED.time_out_morning,
			time_in_afternoon = EXCLUDED.time_in_afternoon,
			time_out_afternoon = EXCLUDED.time_out_afternoon,
			work_time_id = EXCLUDED.work_time_id,
			applied_break_minutes = EXCLUDED.applied_break_minutes,
			net_work_minutes = EXCLUDED.net_work_minutes,
			actual_rendered_minutes = EXCLUDED.actual_rendered_minutes,
			days_credited = EXCLUDED.days_credited,
			early_out = EXCLUDED.early_out,
			is_holiday_attendance = EXCLUDED.is_holiday_attendance,
			late_deduction_id = EXCLUDED.late_deduction_id,
			late_deduction_value = EXCLUDED.late_deduction_value,
			deducted_days = EXCLUDED.deducted_days,
			late_debug = EXCLUDED.late_debug,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	args := []any{rec.EmployeeID, rec.AttendanceDate}
	args = append(args, punchParams(rec.Punches)...)
	args = append(args,
		rec.WorkTimeID, rec.AppliedBreakMinutes, rec.NetWorkMinutes, rec.ActualRenderedMinutes,
		rec.DaysCredited, rec.EarlyOut, rec.IsHolidayAttendance,
		rec.LateDeductionID, rec.LateDeductionValue, rec.DeductedDays, lateDebug, rec.Source,
	)

	if err := q.QueryRow(ctx, query, args...).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return rec, nil
}

// UpsertPunches implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertPunches(ctx context.Context, employeeID int64, date time.Time, punches attendance.Punches, source attendance.Source) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances AS a (
			employee_id, attendance_date,
			time_in_morning, time_out_morning, time_in_afternoon, time_out_afternoon, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE SET
			time_in_morning = EXCLUDED.time_in_morning,
			time_out_morning = EXCLUDED.time_out_morning,
			time_in_afternoon = EXCLUDED.time_in_afternoon,
			time_out_afternoon = EXCLUDED.time_out_afternoon,
			source = EXCLUDED.source,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	args := []any{employeeID, date}
	args = append(args, punchParams(punches)...)
	args = append(args, source)

	rec, err := scanAttendance(q.QueryRow(ctx, query, args...))
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to upsert attendance punches: %w", err)
	}
	return rec, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM attendances a
		INNER JOIN employees e ON e.id = a.employee_id
		WHERE 1 = 1
	`

	args := []interface{}{}
	argIdx := 1

	whereClauses := []string{}

	if filter.EmployeeID != nil && *filter.EmployeeID > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.attendance_date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.attendance_date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if len(whereClauses) > 0 {
		baseQuery += " AND " + strings.Join(whereClauses, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := `SELECT ` + attendanceColumns + `, e.full_name ` + baseQuery

	orderBy := "a.attendance_date DESC, a.employee_id"
	if strings.ToLower(filter.SortOrder) == "asc" {
		orderBy = "a.attendance_date ASC, a.employee_id"
	}
	selectQuery += " ORDER BY " + orderBy

	// PAGINATION
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var employeeName string
		rec, err := scanAttendance(rows, &employeeName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.EmployeeName = &employeeName
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, total, nil
}
