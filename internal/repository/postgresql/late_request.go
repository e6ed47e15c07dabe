package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type lateRequestRepositoryImpl struct {
	db *database.DB
}

func NewLateRequestRepository(db *database.DB) laterequest.Repository {
	return &lateRequestRepositoryImpl{db: db}
}

const lateRequestColumns = `
	lr.id, lr.employee_id, lr.attendance_date,
	lr.time_in_morning, lr.time_out_morning, lr.time_in_afternoon, lr.time_out_afternoon,
	lr.reason, lr.status, lr.reviewed_by, lr.reviewed_at,
	lr.has_original_snapshot,
	lr.original_time_in_morning, lr.original_time_out_morning,
	lr.original_time_in_afternoon, lr.original_time_out_afternoon,
	lr.work_time_id, lr.preview_days_credited, lr.created_at, lr.updated_at,
	e.full_name`

const lateRequestFrom = `
	FROM late_attendance_requests lr
	INNER JOIN employees e ON e.id = lr.employee_id`

func scanLateRequest(row pgx.Row) (laterequest.Request, error) {
	var req laterequest.Request
	var requested, original punchColumns
	var hasOriginal bool
	var employeeName string

	dest := []any{&req.ID, &req.EmployeeID, &req.AttendanceDate}
	dest = append(dest, requested.dest()...)
	dest = append(dest, &req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewedAt, &hasOriginal)
	dest = append(dest, original.dest()...)
	dest = append(dest, &req.WorkTimeID, &req.PreviewDaysCredited, &req.CreatedAt, &req.UpdatedAt, &employeeName)

	if err := row.Scan(dest...); err != nil {
		return laterequest.Request{}, err
	}

	req.Requested = requested.punches()
	if hasOriginal {
		snapshot := original.punches()
		req.Original = &snapshot
	}
	req.EmployeeName = &employeeName
	return req, nil
}

// UpsertPending implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) UpsertPending(ctx context.Context, req laterequest.Request) (laterequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO late_attendance_requests (
			employee_id, attendance_date,
			time_in_morning, time_out_morning, time_in_afternoon, time_out_afternoon,
			reason, status, work_time_id, preview_days_credited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, $9)
		ON CONFLICT (employee_id, attendance_date) WHERE status = 'pending' DO UPDATE SET
			time_in_morning = EXCLUDED.time_in_morning,
			time_out_morning = EXCLUDED.time_out_morning,
			time_in_afternoon = EXCLUDED.time_in_afternoon,
			time_out_afternoon = EXCLUDED.time_out_afternoon,
			reason = EXCLUDED.reason,
			work_time_id = EXCLUDED.work_time_id,
			preview_days_credited = EXCLUDED.preview_days_credited,
			updated_at = NOW()
		RETURNING id
	`

	args := []any{req.EmployeeID, req.AttendanceDate}
	args = append(args, punchParams(req.Requested)...)
	args = append(args, req.Reason, req.WorkTimeID, req.PreviewDaysCredited)

	var id int64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return laterequest.Request{}, fmt.Errorf("failed to upsert late request: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) GetByID(ctx context.Context, id int64) (laterequest.Request, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id int64) (laterequest.Request, error) {
	return r.getByID(ctx, id, true)
}

func (r *lateRequestRepositoryImpl) getByID(ctx context.Context, id int64, forUpdate bool) (laterequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + lateRequestColumns + lateRequestFrom + ` WHERE lr.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF lr`
	}

	req, err := scanLateRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return laterequest.Request{}, laterequest.ErrRequestNotFound
		}
		return laterequest.Request{}, fmt.Errorf("failed to get late request by id: %w", err)
	}
	return req, nil
}

// MarkApproved implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) MarkApproved(ctx context.Context, id int64, reviewedBy string, reviewedAt time.Time, original *attendance.Punches) error {
	q := GetQuerier(ctx, r.db)

	snapshot := attendance.Punches{}
	if original != nil {
		snapshot = *original
	}

	query := `
		UPDATE late_attendance_requests SET
			status = 'approved',
			reviewed_by = $2,
			reviewed_at = $3,
			has_original_snapshot = $4,
			original_time_in_morning = $5,
			original_time_out_morning = $6,
			original_time_in_afternoon = $7,
			original_time_out_afternoon = $8,
			updated_at = NOW()
		WHERE id = $1
	`

	args := []any{id, reviewedBy, reviewedAt, original != nil}
	args = append(args, punchParams(snapshot)...)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to approve late request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return laterequest.ErrRequestNotFound
	}
	return nil
}

// UpdateStatus implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status laterequest.Status, reviewedBy string, reviewedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE late_attendance_requests SET
			status = $2,
			reviewed_by = $3,
			reviewed_at = $4,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status, reviewedBy, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update late request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return laterequest.ErrRequestNotFound
	}
	return nil
}

// List implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) List(ctx context.Context, filter laterequest.LateRequestFilter) ([]laterequest.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := lateRequestFrom + ` WHERE 1 = 1`

	args := []interface{}{}
	argIdx := 1

	whereClauses := []string{}

	// Filter by status
	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	// Filter by employee ID
	if filter.EmployeeID != nil && *filter.EmployeeID > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Filter by date range
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.attendance_date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lr.attendance_date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if len(whereClauses) > 0 {
		baseQuery += " AND " + strings.Join(whereClauses, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count late requests: %w", err)
	}

	selectQuery := `SELECT ` + lateRequestColumns + baseQuery + ` ORDER BY lr.created_at DESC, lr.id DESC`

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
		return nil, 0, fmt.Errorf("failed to query late requests: %w", err)
	}
	defer rows.Close()

	var requests []laterequest.Request
	for rows.Next() {
		req, err := scanLateRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan late request: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, total, nil
}

// ListPendingSubmittedBefore implements laterequest.Repository.
func (r *lateRequestRepositoryImpl) ListPendingSubmittedBefore(ctx context.Context, cutoff time.Time) ([]laterequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + lateRequestColumns + lateRequestFrom + `
		WHERE lr.status = 'pending'
		  AND lr.created_at < $1
		ORDER BY lr.created_at ASC`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending late requests: %w", err)
	}
	defer rows.Close()

	var requests []laterequest.Request
	for rows.Next() {
		req, err := scanLateRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan late request: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, nil
}
