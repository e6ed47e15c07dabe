package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.Repository {
	return &holidayRepositoryImpl{db: db}
}

// ListCandidates implements holiday.Repository.
func (r *holidayRepositoryImpl) ListCandidates(ctx context.Context, date time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, holiday_date, is_recurring, extended_until,
			   default_multiplier, apply_multiplier
		FROM holidays
		WHERE (NOT is_recurring AND holiday_date <= $1::date
			   AND COALESCE(extended_until, holiday_date) >= $1::date)
		   OR (is_recurring
			   AND EXTRACT(MONTH FROM holiday_date) = EXTRACT(MONTH FROM $1::date)
			   AND EXTRACT(DAY FROM holiday_date) = EXTRACT(DAY FROM $1::date))
		ORDER BY is_recurring, id
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(
			&h.ID, &h.Name, &h.HolidayDate, &h.IsRecurring, &h.ExtendedUntil,
			&h.DefaultMultiplier, &h.ApplyMultiplier,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return holidays, nil
}
