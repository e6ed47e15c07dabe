package laterequest

import "context"

// LateRequestService is the late-attendance request lifecycle.
type LateRequestService interface {
	// Submit creates or updates the pending request and returns a
	// non-authoritative credit preview.
	Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error)

	// UpdateStatus approves or rejects a request inside one transaction.
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (StatusChangeResult, error)

	Get(ctx context.Context, id int64) (LateRequestResponse, error)
	List(ctx context.Context, filter LateRequestFilter) (ListLateRequestResponse, error)

	// RemindPending emails HR a digest of requests pending longer than the configured age.
	RemindPending(ctx context.Context) error
}
