package laterequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
)

const notifyTimeout = 30 * time.Second

type Config struct {
	// ReminderAge is how long a request stays pending before HR is reminded.
	ReminderAge time.Duration
}

type LateRequestServiceImpl struct {
	txManager database.TxManager
	laterequest.Repository
	recipients  laterequest.RecipientRepository
	attendances attendance.AttendanceRepository
	employees   employee.EmployeeRepository
	evaluator   attendance.Evaluator
	notifier    laterequest.Notifier
	metrics     *metrics.Metrics
	cfg         Config

	now func() time.Time
	// goAsync runs fire-and-forget work; tests replace it to run inline.
	goAsync func(func())
}

func NewLateRequestService(
	txManager database.TxManager,
	requestRepo laterequest.Repository,
	recipientRepo laterequest.RecipientRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	evaluator attendance.Evaluator,
	notifier laterequest.Notifier,
	m *metrics.Metrics,
	cfg Config,
) laterequest.LateRequestService {
	if m == nil {
		m = metrics.Nop()
	}
	return &LateRequestServiceImpl{
		txManager:   txManager,
		Repository:  requestRepo,
		recipients:  recipientRepo,
		attendances: attendanceRepo,
		employees:   employeeRepo,
		evaluator:   evaluator,
		notifier:    notifier,
		metrics:     m,
		cfg:         cfg,
		now:         time.Now,
		goAsync:     func(fn func()) { go fn() },
	}
}

// Submit implements laterequest.LateRequestService.
func (s *LateRequestServiceImpl) Submit(ctx context.Context, req laterequest.SubmitRequest) (laterequest.SubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return laterequest.SubmitResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return laterequest.SubmitResponse{}, err
	}
	if !emp.IsActive {
		return laterequest.SubmitResponse{}, employee.ErrEmployeeInactive
	}

	pending := req.Request
	var resp laterequest.SubmitResponse

	// The preview is informational; a failure here must not block the submission.
	ev, err := s.evaluator.Evaluate(ctx, attendance.EvaluationInput{
		EmployeeID: pending.EmployeeID,
		Date:       pending.AttendanceDate,
		Punches:    pending.Requested,
		WorkTimeID: pending.WorkTimeID,
	})
	if err != nil {
		slog.Warn("late request preview failed",
			"employee_id", pending.EmployeeID,
			"attendance_date", pending.AttendanceDate.Format(attendance.DateLayout),
			"error", err,
		)
		resp.PreviewError = err.Error()
	} else {
		credited := ev.DaysCredited
		pending.PreviewDaysCredited = &credited
		preview := attendance.NewEvaluationResponse(ev)
		resp.Preview = &preview
	}

	saved, err := s.Repository.UpsertPending(ctx, pending)
	if err != nil {
		return laterequest.SubmitResponse{}, fmt.Errorf("failed to save late request: %w", err)
	}
	if saved.EmployeeName == nil {
		name := emp.FullName
		saved.EmployeeName = &name
	}
	resp.Request = laterequest.NewLateRequestResponse(saved)

	s.notifySubmission(ctx, saved)

	return resp, nil
}

func (s *LateRequestServiceImpl) notifySubmission(ctx context.Context, req laterequest.Request) {
	if s.notifier == nil {
		return
	}
	submission := toSubmission(req)
	ctx = context.WithoutCancel(ctx)

	s.goAsync(func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		recipients, err := s.recipients.ListActiveHREmails(ctx)
		if err != nil {
			slog.Error("failed to list HR recipients", "request_id", req.ID, "error", err)
			s.metrics.Notification("late_request", err)
			return
		}

		err = s.notifier.NotifyLateRequest(ctx, recipients, submission)
		s.metrics.Notification("late_request", err)
		if err != nil {
			slog.Error("failed to notify HR of late request", "request_id", req.ID, "error", err)
		}
	})
}

func toSubmission(req laterequest.Request) laterequest.Submission {
	var name string
	if req.EmployeeName != nil {
		name = *req.EmployeeName
	}

	requested := map[string]string{}
	add := func(label string, v timerange.ClockTime) {
		if v.Valid() {
			requested[label] = v.String()
		}
	}
	add("time_in_morning", req.Requested.TimeInMorning)
	add("time_out_morning", req.Requested.TimeOutMorning)
	add("time_in_afternoon", req.Requested.TimeInAfternoon)
	add("time_out_afternoon", req.Requested.TimeOutAfternoon)

	return laterequest.Submission{
		RequestID:      req.ID,
		EmployeeName:   name,
		AttendanceDate: req.AttendanceDate.Format(attendance.DateLayout),
		Requested:      requested,
		Reason:         req.Reason,
		PreviewCredit:  req.PreviewDaysCredited,
	}
}

// UpdateStatus implements laterequest.LateRequestService.
func (s *LateRequestServiceImpl) UpdateStatus(ctx context.Context, req laterequest.UpdateStatusRequest) (result laterequest.StatusChangeResult, err error) {
	if err := req.Validate(); err != nil {
		return laterequest.StatusChangeResult{}, err
	}
	target := laterequest.Status(req.Status)

	defer func() {
		switch {
		case err != nil:
			s.metrics.StatusChange(string(target), "error")
		case result.NoOp:
			s.metrics.StatusChange(string(target), "noop")
		default:
			s.metrics.StatusChange(string(target), "ok")
		}
	}()

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.Repository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}

		result = laterequest.StatusChangeResult{
			RequestID:      current.ID,
			Status:         target,
			PreviousStatus: current.Status,
		}

		if current.Status == target && target != laterequest.StatusPending {
			result.Success = true
			result.NoOp = true
			result.Message = fmt.Sprintf("request is already %s", target)
			return nil
		}
		if !laterequest.CanTransition(current.Status, target) {
			return fmt.Errorf("%w: %s to %s", laterequest.ErrInvalidTransition, current.Status, target)
		}

		reviewedAt := s.now()
		var rec *attendance.Record

		switch {
		case target == laterequest.StatusApproved:
			rec, err = s.approve(ctx, current, req.ReviewedBy, reviewedAt)
		case current.Status == laterequest.StatusApproved:
			rec, err = s.rejectApproved(ctx, current, req.ReviewedBy, reviewedAt)
		default:
			err = s.Repository.UpdateStatus(ctx, current.ID, target, req.ReviewedBy, reviewedAt)
			if err != nil {
				err = fmt.Errorf("failed to update late request status: %w", err)
			}
		}
		if err != nil {
			return err
		}

		result.Success = true
		result.Message = fmt.Sprintf("request %s", target)
		if rec != nil {
			resp := attendance.NewAttendanceResponse(*rec)
			result.Attendance = &resp
		}
		return nil
	})
	if err != nil {
		slog.Error("late request status change failed",
			"request_id", req.RequestID,
			"status", req.Status,
			"reviewed_by", req.ReviewedBy,
			"error", err,
		)
		return laterequest.StatusChangeResult{}, err
	}

	slog.Info("late request status changed",
		"request_id", result.RequestID,
		"previous_status", result.PreviousStatus,
		"status", result.Status,
		"no_op", result.NoOp,
		"reviewed_by", req.ReviewedBy,
	)
	return result, nil
}

// approve snapshots the current punches, runs the engine over the requested
// punches and writes the attendance row. Any error rolls back the whole change.
func (s *LateRequestServiceImpl) approve(ctx context.Context, req laterequest.Request, reviewedBy string, reviewedAt time.Time) (*attendance.Record, error) {
	existing, err := s.attendances.GetByEmployeeAndDateForUpdate(ctx, req.EmployeeID, req.AttendanceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to lock attendance: %w", err)
	}

	var original *attendance.Punches
	rec := attendance.Record{EmployeeID: req.EmployeeID, AttendanceDate: req.AttendanceDate}
	if existing != nil {
		snapshot := existing.Punches
		original = &snapshot
		rec = *existing
	}

	if err := s.Repository.MarkApproved(ctx, req.ID, reviewedBy, reviewedAt, original); err != nil {
		return nil, fmt.Errorf("failed to mark late request approved: %w", err)
	}

	ev, err := s.evaluator.Evaluate(ctx, attendance.EvaluationInput{
		EmployeeID: req.EmployeeID,
		Date:       req.AttendanceDate,
		Punches:    req.Requested,
		WorkTimeID: req.WorkTimeID,
	})
	if err != nil {
		return nil, err
	}

	rec.Punches = req.Requested
	ev.ApplyTo(&rec)
	rec.Source = attendance.SourceLateRequest

	saved, err := s.attendances.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}
	return &saved, nil
}

// rejectApproved restores the punches captured at approval and recomputes
// the derived fields from them. Without a snapshot the day had no attendance,
// so the row is left with no punches and no credit. When no shift resolves for
// the restored punches they are still written, with derived fields cleared.
func (s *LateRequestServiceImpl) rejectApproved(ctx context.Context, req laterequest.Request, reviewedBy string, reviewedAt time.Time) (*attendance.Record, error) {
	if err := s.Repository.UpdateStatus(ctx, req.ID, laterequest.StatusRejected, reviewedBy, reviewedAt); err != nil {
		return nil, fmt.Errorf("failed to update late request status: %w", err)
	}

	existing, err := s.attendances.GetByEmployeeAndDateForUpdate(ctx, req.EmployeeID, req.AttendanceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to lock attendance: %w", err)
	}
	if existing == nil {
		slog.Warn("approved late request has no attendance row to restore", "request_id", req.ID)
		return nil, nil
	}

	rec := *existing
	rec.Source = attendance.SourceRecompute

	if req.Original == nil || req.Original.IsEmpty() {
		rec.Punches = attendance.Punches{}
		rec.WorkTimeID = nil
		rec.ClearComputed()
	} else {
		rec.Punches = *req.Original
		ev, err := s.evaluator.Evaluate(ctx, attendance.EvaluationInput{
			EmployeeID: rec.EmployeeID,
			Date:       rec.AttendanceDate,
			Punches:    rec.Punches,
		})
		switch {
		case errors.Is(err, schedule.ErrNoShiftResolved):
			// The restored punches are kept even when no shift applies any more.
			slog.Warn("no shift for restored attendance, derived fields cleared",
				"request_id", req.ID,
				"employee_id", rec.EmployeeID,
				"date", rec.AttendanceDate.Format("2006-01-02"),
			)
			rec.WorkTimeID = nil
			rec.ClearComputed()
		case err != nil:
			return nil, fmt.Errorf("failed to recompute restored attendance: %w", err)
		default:
			ev.ApplyTo(&rec)
		}
	}

	saved, err := s.attendances.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to restore attendance: %w", err)
	}
	return &saved, nil
}

// Get implements laterequest.LateRequestService.
func (s *LateRequestServiceImpl) Get(ctx context.Context, id int64) (laterequest.LateRequestResponse, error) {
	req, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return laterequest.LateRequestResponse{}, err
	}
	return laterequest.NewLateRequestResponse(req), nil
}

// List implements laterequest.LateRequestService.
func (s *LateRequestServiceImpl) List(ctx context.Context, filter laterequest.LateRequestFilter) (laterequest.ListLateRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return laterequest.ListLateRequestResponse{}, err
	}

	requests, total, err := s.Repository.List(ctx, filter)
	if err != nil {
		return laterequest.ListLateRequestResponse{}, fmt.Errorf("failed to list late requests: %w", err)
	}

	responses := make([]laterequest.LateRequestResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, laterequest.NewLateRequestResponse(req))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return laterequest.ListLateRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}, nil
}

// RemindPending implements laterequest.LateRequestService.
func (s *LateRequestServiceImpl) RemindPending(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	if s.cfg.ReminderAge <= 0 {
		return errors.New("reminder age must be positive")
	}

	cutoff := s.now().Add(-s.cfg.ReminderAge)
	pending, err := s.Repository.ListPendingSubmittedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list pending late requests: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	recipients, err := s.recipients.ListActiveHREmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list HR recipients: %w", err)
	}

	submissions := make([]laterequest.Submission, 0, len(pending))
	for _, req := range pending {
		submissions = append(submissions, toSubmission(req))
	}

	err = s.notifier.NotifyPendingDigest(ctx, recipients, submissions)
	s.metrics.Notification("pending_digest", err)
	if err != nil {
		return fmt.Errorf("failed to send pending digest: %w", err)
	}

	slog.Info("pending late request reminder sent", "pending", len(pending), "recipients", len(recipients))
	return nil
}
