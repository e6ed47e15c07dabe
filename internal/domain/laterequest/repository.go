package laterequest

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
)

type Repository interface {
	// UpsertPending inserts a pending request or updates the existing pending
	// one for the same employee and date.
	UpsertPending(ctx context.Context, req Request) (Request, error)

	GetByID(ctx context.Context, id int64) (Request, error)

	// GetByIDForUpdate locks the request row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (Request, error)

	// MarkApproved sets status, reviewer and the original punch snapshot.
	MarkApproved(ctx context.Context, id int64, reviewedBy string, reviewedAt time.Time, original *attendance.Punches) error

	UpdateStatus(ctx context.Context, id int64, status Status, reviewedBy string, reviewedAt time.Time) error

	List(ctx context.Context, filter LateRequestFilter) ([]Request, int64, error)

	ListPendingSubmittedBefore(ctx context.Context, cutoff time.Time) ([]Request, error)
}

// RecipientRepository lists HR addresses that receive request notifications.
type RecipientRepository interface {
	ListActiveHREmails(ctx context.Context) ([]string, error)
}
