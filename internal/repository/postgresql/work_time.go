package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type workTimeRepositoryImpl struct {
	db *database.DB
}

func NewWorkTimeRepository(db *database.DB) schedule.WorkTimeRepository {
	return &workTimeRepositoryImpl{db: db}
}

const workTimeColumns = `
	id, name, start_time, end_time, total_minutes,
	valid_in_start, valid_in_end, is_default, created_at, updated_at`

func scanWorkTime(row pgx.Row) (schedule.WorkTime, error) {
	var wt schedule.WorkTime
	var start, end, validStart, validEnd pgtype.Time

	err := row.Scan(
		&wt.ID, &wt.Name, &start, &end, &wt.TotalMinutes,
		&validStart, &validEnd, &wt.IsDefault, &wt.CreatedAt, &wt.UpdatedAt,
	)
	if err != nil {
		return schedule.WorkTime{}, err
	}

	wt.StartTime = clockValue(start)
	wt.EndTime = clockValue(end)
	wt.ValidInStart = clockValue(validStart)
	wt.ValidInEnd = clockValue(validEnd)
	return wt, nil
}

// GetByID implements schedule.WorkTimeRepository.
func (r *workTimeRepositoryImpl) GetByID(ctx context.Context, id int64) (schedule.WorkTime, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workTimeColumns + ` FROM work_times WHERE id = $1`

	wt, err := scanWorkTime(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkTime{}, schedule.ErrWorkTimeNotFound
		}
		return schedule.WorkTime{}, fmt.Errorf("failed to get work time by id: %w", err)
	}
	return wt, nil
}

// GetDefault implements schedule.WorkTimeRepository.
func (r *workTimeRepositoryImpl) GetDefault(ctx context.Context) (schedule.WorkTime, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workTimeColumns + ` FROM work_times WHERE is_default ORDER BY id LIMIT 1`

	wt, err := scanWorkTime(q.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkTime{}, schedule.ErrWorkTimeNotFound
		}
		return schedule.WorkTime{}, fmt.Errorf("failed to get default work time: %w", err)
	}
	return wt, nil
}

// ListBreaks implements schedule.WorkTimeRepository.
func (r *workTimeRepositoryImpl) ListBreaks(ctx context.Context, workTimeID int64) ([]schedule.BreakWindow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, work_time_id, name, break_start, break_end,
			   valid_break_out_start, valid_break_out_end,
			   valid_break_in_start, valid_break_in_end,
			   is_shift_split, sort_order
		FROM break_windows
		WHERE work_time_id = $1
		ORDER BY sort_order, break_start
	`

	rows, err := q.Query(ctx, query, workTimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query break windows: %w", err)
	}
	defer rows.Close()

	var breaks []schedule.BreakWindow
	for rows.Next() {
		var b schedule.BreakWindow
		var start, end, outStart, outEnd, inStart, inEnd pgtype.Time

		if err := rows.Scan(
			&b.ID, &b.WorkTimeID, &b.Name, &start, &end,
			&outStart, &outEnd, &inStart, &inEnd,
			&b.IsShiftSplit, &b.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan break window: %w", err)
		}

		b.BreakStart = clockValue(start)
		b.BreakEnd = clockValue(end)
		b.ValidBreakOutStart = clockValue(outStart)
		b.ValidBreakOutEnd = clockValue(outEnd)
		b.ValidBreakInStart = clockValue(inStart)
		b.ValidBreakInEnd = clockValue(inEnd)
		breaks = append(breaks, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return breaks, nil
}
