package holiday

import (
	"context"
	"time"
)

type Repository interface {
	// ListCandidates returns holidays that may cover date: exact, extended
	// ranges and recurring entries for the same month and day.
	ListCandidates(ctx context.Context, date time.Time) ([]Holiday, error)
}
