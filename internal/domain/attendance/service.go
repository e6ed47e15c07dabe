package attendance

import (
	"context"
	"io"
	"time"
)

// EvaluationInput is everything the engine needs besides reference data.
type EvaluationInput struct {
	EmployeeID int64
	Date       time.Time
	Punches    Punches
	// WorkTimeID overrides shift resolution when set.
	WorkTimeID *int64
}

// Evaluator runs shift resolution, working intervals, credit and late
// deduction as one unit. It never persists.
type Evaluator interface {
	Evaluate(ctx context.Context, in EvaluationInput) (Evaluation, error)
}

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// RecordPunches is the direct write path used by the biometrics importer.
	RecordPunches(ctx context.Context, req RecordPunchesRequest) (AttendanceResponse, error)

	// Recompute re-runs the engine over the stored punches and persists the result.
	Recompute(ctx context.Context, req RecomputeRequest) (AttendanceResponse, error)

	// Preview evaluates punches without persisting.
	Preview(ctx context.Context, req PreviewRequest) (EvaluationResponse, error)

	GetAttendance(ctx context.Context, id int64) (AttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ExportAttendance writes an xlsx workbook of the filtered records.
	ExportAttendance(ctx context.Context, filter AttendanceFilter, w io.Writer) error
}
