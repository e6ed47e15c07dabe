package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
)

type resolverImpl struct {
	workTimeRepo schedule.WorkTimeRepository
	scheduleRepo schedule.ShiftScheduleRepository
}

func NewResolver(workTimeRepo schedule.WorkTimeRepository, scheduleRepo schedule.ShiftScheduleRepository) schedule.Resolver {
	return &resolverImpl{
		workTimeRepo: workTimeRepo,
		scheduleRepo: scheduleRepo,
	}
}

// Resolve implements schedule.Resolver.
func (r *resolverImpl) Resolve(ctx context.Context, employeeID int64, date time.Time, overrideWorkTimeID *int64) (schedule.ResolvedShift, error) {
	if overrideWorkTimeID != nil && *overrideWorkTimeID > 0 {
		wt, err := r.workTimeRepo.GetByID(ctx, *overrideWorkTimeID)
		if err != nil {
			if errors.Is(err, schedule.ErrWorkTimeNotFound) {
				return schedule.ResolvedShift{}, fmt.Errorf("%w: override work time %d does not exist", schedule.ErrNoShiftResolved, *overrideWorkTimeID)
			}
			return schedule.ResolvedShift{}, fmt.Errorf("failed to get override work time: %w", err)
		}
		return r.withBreaks(ctx, wt, schedule.ResolutionOverride, nil)
	}

	schedules, err := r.scheduleRepo.ListActiveForDate(ctx, employeeID, date)
	if err != nil {
		return schedule.ResolvedShift{}, fmt.Errorf("failed to list shift schedules: %w", err)
	}

	if winner := SelectSchedule(schedules, date); winner != nil {
		wt, err := r.workTimeRepo.GetByID(ctx, winner.WorkTimeID)
		if err != nil {
			return schedule.ResolvedShift{}, fmt.Errorf("failed to get scheduled work time %d: %w", winner.WorkTimeID, err)
		}
		scheduleID := winner.ID
		return r.withBreaks(ctx, wt, schedule.ResolutionSchedule, &scheduleID)
	}

	wt, err := r.workTimeRepo.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrWorkTimeNotFound) {
			return schedule.ResolvedShift{}, schedule.ErrNoShiftResolved
		}
		return schedule.ResolvedShift{}, fmt.Errorf("failed to get default work time: %w", err)
	}
	return r.withBreaks(ctx, wt, schedule.ResolutionDefault, nil)
}

func (r *resolverImpl) withBreaks(ctx context.Context, wt schedule.WorkTime, source schedule.ResolutionSource, scheduleID *int64) (schedule.ResolvedShift, error) {
	breaks, err := r.workTimeRepo.ListBreaks(ctx, wt.ID)
	if err != nil {
		return schedule.ResolvedShift{}, fmt.Errorf("failed to list breaks for work time %d: %w", wt.ID, err)
	}
	return schedule.ResolvedShift{
		WorkTime:   wt,
		Breaks:     breaks,
		Source:     source,
		ScheduleID: scheduleID,
	}, nil
}

// SelectSchedule picks the winning schedule for date: highest priority,
// then latest effective date. It returns nil when nothing matches.
func SelectSchedule(schedules []schedule.ShiftSchedule, date time.Time) *schedule.ShiftSchedule {
	var matches []schedule.ShiftSchedule
	for _, s := range schedules {
		if isActiveOn(s, date) && matchesDate(s, date) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority > matches[j].Priority
		}
		if !matches[i].EffectiveDate.Equal(matches[j].EffectiveDate) {
			return matches[i].EffectiveDate.After(matches[j].EffectiveDate)
		}
		return matches[i].ID > matches[j].ID
	})
	return &matches[0]
}

func isActiveOn(s schedule.ShiftSchedule, date time.Time) bool {
	d := dayOf(date)
	if !s.IsActive || dayOf(s.EffectiveDate).After(d) {
		return false
	}
	if s.EndDate != nil && !s.EndDate.IsZero() && dayOf(*s.EndDate).Before(d) {
		return false
	}
	return true
}

func matchesDate(s schedule.ShiftSchedule, date time.Time) bool {
	if len(s.DaysOfWeek) > 0 {
		weekday := strings.ToLower(date.Weekday().String())
		for _, day := range s.DaysOfWeek {
			day = strings.ToLower(strings.TrimSpace(day))
			if day == weekday || (len(day) == 3 && strings.HasPrefix(weekday, day)) {
				return true
			}
		}
		return false
	}

	switch s.RecurrenceType {
	case schedule.RecurrenceDaily, schedule.RecurrenceWeekly:
		return true
	case schedule.RecurrenceMonthly:
		return s.EffectiveDate.Day() == date.Day()
	default:
		return dayOf(s.EffectiveDate).Equal(dayOf(date))
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
