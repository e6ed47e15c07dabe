package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
)

type shiftScheduleRepositoryImpl struct {
	db *database.DB
}

func NewShiftScheduleRepository(db *database.DB) schedule.ShiftScheduleRepository {
	return &shiftScheduleRepositoryImpl{db: db}
}

// ListActiveForDate implements schedule.ShiftScheduleRepository.
// Recurrence and weekday matching happen in the resolver.
func (r *shiftScheduleRepositoryImpl) ListActiveForDate(ctx context.Context, employeeID int64, date time.Time) ([]schedule.ShiftSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_time_id, effective_date, end_date,
			   recurrence_type, days_of_week, priority, is_active,
			   created_at, updated_at
		FROM shift_schedules
		WHERE employee_id = $1
		  AND is_active
		  AND effective_date <= $2::date
		  AND (end_date IS NULL OR end_date >= $2::date)
		ORDER BY priority DESC, effective_date DESC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.ShiftSchedule
	for rows.Next() {
		var s schedule.ShiftSchedule
		if err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.WorkTimeID, &s.EffectiveDate, &s.EndDate,
			&s.RecurrenceType, &s.DaysOfWeek, &s.Priority, &s.IsActive,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return schedules, nil
}
