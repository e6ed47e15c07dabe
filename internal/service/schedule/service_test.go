package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeWorkTimes struct {
	byID       map[int64]schedule.WorkTime
	defaultID  int64
	breaks     map[int64][]schedule.BreakWindow
	defaultErr error
}

func (f *fakeWorkTimes) GetByID(ctx context.Context, id int64) (schedule.WorkTime, error) {
	wt, ok := f.byID[id]
	if !ok {
		return schedule.WorkTime{}, schedule.ErrWorkTimeNotFound
	}
	return wt, nil
}

func (f *fakeWorkTimes) GetDefault(ctx context.Context) (schedule.WorkTime, error) {
	if f.defaultErr != nil {
		return schedule.WorkTime{}, f.defaultErr
	}
	wt, ok := f.byID[f.defaultID]
	if !ok {
		return schedule.WorkTime{}, schedule.ErrWorkTimeNotFound
	}
	return wt, nil
}

func (f *fakeWorkTimes) ListBreaks(ctx context.Context, workTimeID int64) ([]schedule.BreakWindow, error) {
	return f.breaks[workTimeID], nil
}

type fakeSchedules struct {
	rows []schedule.ShiftSchedule
}

func (f *fakeSchedules) ListActiveForDate(ctx context.Context, employeeID int64, date time.Time) ([]schedule.ShiftSchedule, error) {
	var out []schedule.ShiftSchedule
	for _, r := range f.rows {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newFakeWorkTimes() *fakeWorkTimes {
	return &fakeWorkTimes{
		byID: map[int64]schedule.WorkTime{
			1: {ID: 1, Name: "Regular", StartTime: timerange.Clock(8, 0, 0), EndTime: timerange.Clock(17, 0, 0), IsDefault: true},
			2: {ID: 2, Name: "Morning", StartTime: timerange.Clock(6, 0, 0), EndTime: timerange.Clock(15, 0, 0)},
			3: {ID: 3, Name: "Night", StartTime: timerange.Clock(22, 0, 0), EndTime: timerange.Clock(6, 0, 0)},
		},
		defaultID: 1,
		breaks: map[int64][]schedule.BreakWindow{
			2: {{ID: 20, WorkTimeID: 2, BreakStart: timerange.Clock(11, 0, 0), BreakEnd: timerange.Clock(12, 0, 0), IsShiftSplit: true}},
		},
	}
}

func TestSelectSchedule(t *testing.T) {
	monday := day("2024-03-04")

	cases := []struct {
		name   string
		rows   []schedule.ShiftSchedule
		wantID int64
	}{
		{
			name: "priority wins",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-03-01"), RecurrenceType: schedule.RecurrenceDaily, Priority: 1, IsActive: true},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceDaily, Priority: 5, IsActive: true},
			},
			wantID: 2,
		},
		{
			name: "latest effective date breaks ties",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceWeekly, Priority: 1, IsActive: true},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-02-01"), RecurrenceType: schedule.RecurrenceWeekly, Priority: 1, IsActive: true},
			},
			wantID: 2,
		},
		{
			name: "days of week take precedence over recurrence",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceDaily, DaysOfWeek: []string{"Tuesday"}, Priority: 9, IsActive: true},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-01-01"), DaysOfWeek: []string{"mon", "wed"}, Priority: 1, IsActive: true},
			},
			wantID: 2,
		},
		{
			name: "none matches only its own date",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-03-03"), RecurrenceType: schedule.RecurrenceNone, Priority: 9, IsActive: true},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-03-04"), RecurrenceType: schedule.RecurrenceNone, Priority: 1, IsActive: true},
			},
			wantID: 2,
		},
		{
			name: "monthly matches day of month",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-01-04"), RecurrenceType: schedule.RecurrenceMonthly, IsActive: true},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-01-05"), RecurrenceType: schedule.RecurrenceMonthly, Priority: 3, IsActive: true},
			},
			wantID: 1,
		},
		{
			name: "inactive and expired rows are ignored",
			rows: []schedule.ShiftSchedule{
				{ID: 1, WorkTimeID: 2, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceDaily, Priority: 9, IsActive: false},
				{ID: 2, WorkTimeID: 3, EffectiveDate: day("2024-01-01"), EndDate: ptrTime(day("2024-03-03")), RecurrenceType: schedule.RecurrenceDaily, Priority: 9, IsActive: true},
				{ID: 3, WorkTimeID: 2, EffectiveDate: day("2024-03-05"), RecurrenceType: schedule.RecurrenceDaily, Priority: 9, IsActive: true},
				{ID: 4, WorkTimeID: 2, EffectiveDate: day("2024-01-01"), EndDate: ptrTime(day("2024-03-04")), RecurrenceType: schedule.RecurrenceDaily, IsActive: true},
			},
			wantID: 4,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectSchedule(tc.rows, monday)
			require.NotNil(t, got)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}

	assert.Nil(t, SelectSchedule(nil, monday))
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestResolve(t *testing.T) {
	ctx := context.Background()
	monday := day("2024-03-04")

	t.Run("override skips schedules", func(t *testing.T) {
		schedules := &fakeSchedules{rows: []schedule.ShiftSchedule{
			{ID: 1, EmployeeID: 7, WorkTimeID: 3, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceDaily, Priority: 9, IsActive: true},
		}}
		r := NewResolver(newFakeWorkTimes(), schedules)

		override := int64(2)
		got, err := r.Resolve(ctx, 7, monday, &override)
		require.NoError(t, err)
		assert.Equal(t, schedule.ResolutionOverride, got.Source)
		assert.Equal(t, int64(2), got.WorkTime.ID)
		assert.Len(t, got.Breaks, 1)
		assert.Nil(t, got.ScheduleID)
	})

	t.Run("schedule match", func(t *testing.T) {
		schedules := &fakeSchedules{rows: []schedule.ShiftSchedule{
			{ID: 11, EmployeeID: 7, WorkTimeID: 3, EffectiveDate: day("2024-01-01"), RecurrenceType: schedule.RecurrenceDaily, IsActive: true},
		}}
		r := NewResolver(newFakeWorkTimes(), schedules)

		got, err := r.Resolve(ctx, 7, monday, nil)
		require.NoError(t, err)
		assert.Equal(t, schedule.ResolutionSchedule, got.Source)
		assert.Equal(t, int64(3), got.WorkTime.ID)
		require.NotNil(t, got.ScheduleID)
		assert.Equal(t, int64(11), *got.ScheduleID)
	})

	t.Run("falls back to default", func(t *testing.T) {
		r := NewResolver(newFakeWorkTimes(), &fakeSchedules{})
		got, err := r.Resolve(ctx, 7, monday, nil)
		require.NoError(t, err)
		assert.Equal(t, schedule.ResolutionDefault, got.Source)
		assert.Equal(t, int64(1), got.WorkTime.ID)
	})

	t.Run("no default is a resolution error", func(t *testing.T) {
		wt := newFakeWorkTimes()
		wt.defaultID = 0
		r := NewResolver(wt, &fakeSchedules{})
		_, err := r.Resolve(ctx, 7, monday, nil)
		assert.ErrorIs(t, err, schedule.ErrNoShiftResolved)
	})

	t.Run("unknown override is a resolution error", func(t *testing.T) {
		r := NewResolver(newFakeWorkTimes(), &fakeSchedules{})
		override := int64(99)
		_, err := r.Resolve(ctx, 7, monday, &override)
		assert.ErrorIs(t, err, schedule.ErrNoShiftResolved)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		wt := newFakeWorkTimes()
		wt.defaultErr = errors.New("connection reset")
		r := NewResolver(wt, &fakeSchedules{})
		_, err := r.Resolve(ctx, 7, monday, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, schedule.ErrNoShiftResolved)
	})
}
