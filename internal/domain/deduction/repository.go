package deduction

import "context"

type Repository interface {
	// ListTiersByWorkTime returns every tier of the work time with its rules
	// ordered by min_minutes descending.
	ListTiersByWorkTime(ctx context.Context, workTimeID int64) ([]Tier, error)
}
