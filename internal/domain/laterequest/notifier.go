package laterequest

import "context"

// Submission is what HR is told about a new or updated request.
type Submission struct {
	RequestID      int64
	EmployeeName   string
	AttendanceDate string
	Requested      map[string]string
	Reason         string
	PreviewCredit  *float64
}

// Notifier delivers HR notifications. Failures never affect the request write.
type Notifier interface {
	NotifyLateRequest(ctx context.Context, recipients []string, s Submission) error
	NotifyPendingDigest(ctx context.Context, recipients []string, pending []Submission) error
}
