package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/google/uuid"
)

// DayInput is the full reference data for one employee day.
type DayInput struct {
	EmployeeID int64
	Date       time.Time
	Shift      schedule.ResolvedShift
	Punches    attendance.Punches
	Holidays   []holiday.Holiday
	Tiers      []deduction.Tier
}

// Adjudicate turns punches into credited days. It performs no I/O, so the
// preview and the approval paths produce the same numbers.
func Adjudicate(in DayInput, p Policy) (attendance.Evaluation, error) {
	date := timerange.Day(in.Date)
	wt := in.Shift.WorkTime

	shift, ok := timerange.Normalize(date, wt.StartTime, wt.EndTime)
	if !ok {
		return attendance.Evaluation{}, fmt.Errorf("%w: work time %d", schedule.ErrInvalidWorkTime, wt.ID)
	}

	working := BuildWorkingIntervals(date, shift, in.Shift.Breaks)
	worked := WorkedIntervals(date, in.Punches, shift.Start)
	rendered, adjusted := ComputeCredit(worked, working.Intervals, working.CreditBasisMinutes)

	ev := attendance.Evaluation{
		EmployeeID:            in.EmployeeID,
		AttendanceDate:        date,
		WorkTimeID:            wt.ID,
		WorkTimeName:          wt.Name,
		ShiftSource:           string(in.Shift.Source),
		AppliedBreakMinutes:   working.AppliedBreakMinutes,
		NetWorkMinutes:        working.CreditBasisMinutes,
		ActualRenderedMinutes: rendered,
		EarlyOut:              IsEarlyOut(in.Punches, p),
	}

	if h := MatchHoliday(in.Holidays, date); h != nil {
		holidayID := h.ID
		ev.HolidayID = &holidayID
		adjusted, ev.HolidayApplied = ApplyHolidayMultiplier(adjusted, h, p.ClampHolidayMultiplier)
	}
	ev.AdjustedDays = adjusted

	ev.Late = ComputeLateDeduction(LateInput{
		Date:     date,
		WorkTime: wt,
		Working:  working,
		Worked:   worked,
		Tiers:    in.Tiers,
	}, p)
	ev.DeductedDays = ev.Late.DeductedDays
	ev.DaysCredited = FinalCredit(ev.AdjustedDays, ev.DeductedDays)

	return ev, nil
}

// Engine loads reference data and runs Adjudicate.
type Engine struct {
	resolver   schedule.Resolver
	deductions deduction.Repository
	holidays   holiday.Repository
	policy     Policy
	metrics    *metrics.Metrics
	caller     string
}

func NewEngine(resolver schedule.Resolver, deductions deduction.Repository, holidays holiday.Repository, policy Policy, m *metrics.Metrics) *Engine {
	return &Engine{
		resolver:   resolver,
		deductions: deductions,
		holidays:   holidays,
		policy:     policy,
		metrics:    m,
		caller:     "engine",
	}
}

// WithCaller returns a copy of the engine that labels its metrics with caller.
func (e *Engine) WithCaller(caller string) *Engine {
	cp := *e
	cp.caller = caller
	return &cp
}

// Evaluate implements attendance.Evaluator.
func (e *Engine) Evaluate(ctx context.Context, in attendance.EvaluationInput) (ev attendance.Evaluation, err error) {
	started := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.ObserveEvaluation(e.caller, started, err)
		}
	}()

	date := timerange.Day(in.Date)

	shift, err := e.resolver.Resolve(ctx, in.EmployeeID, date, in.WorkTimeID)
	if err != nil {
		return attendance.Evaluation{}, err
	}

	tiers, err := e.deductions.ListTiersByWorkTime(ctx, shift.WorkTime.ID)
	if err != nil {
		return attendance.Evaluation{}, fmt.Errorf("failed to list deduction tiers: %w", err)
	}

	holidays, err := e.holidays.ListCandidates(ctx, date)
	if err != nil {
		return attendance.Evaluation{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	ev, err = Adjudicate(DayInput{
		EmployeeID: in.EmployeeID,
		Date:       date,
		Shift:      shift,
		Punches:    in.Punches,
		Holidays:   holidays,
		Tiers:      tiers,
	}, e.policy)
	if err != nil {
		return attendance.Evaluation{}, err
	}

	ev.Late.TraceID = uuid.NewString()
	return ev, nil
}
