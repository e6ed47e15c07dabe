package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memAttendanceRepo struct {
	nextID  int64
	records map[string]attendance.Record
	failOn  string
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: map[string]attendance.Record{}}
}

func recordKey(employeeID int64, date time.Time) string {
	return fmt.Sprintf("%d/%s", employeeID, date.Format(attendance.DateLayout))
}

func (m *memAttendanceRepo) GetByID(ctx context.Context, id int64) (attendance.Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (m *memAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	rec, ok := m.records[recordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memAttendanceRepo) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID int64, date time.Time) (*attendance.Record, error) {
	return m.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (m *memAttendanceRepo) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if m.failOn == "upsert" {
		return attendance.Record{}, errors.New("connection reset")
	}
	key := recordKey(record.EmployeeID, record.AttendanceDate)
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
	} else {
		m.nextID++
		record.ID = m.nextID
	}
	m.records[key] = record
	return record, nil
}

func (m *memAttendanceRepo) UpsertPunches(ctx context.Context, employeeID int64, date time.Time, punches attendance.Punches, source attendance.Source) (attendance.Record, error) {
	key := recordKey(employeeID, date)
	rec, ok := m.records[key]
	if !ok {
		m.nextID++
		rec = attendance.Record{ID: m.nextID, EmployeeID: employeeID, AttendanceDate: date}
	}
	rec.Punches = punches
	rec.Source = source
	m.records[key] = rec
	return rec, nil
}

func (m *memAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	var all []attendance.Record
	for _, rec := range m.records {
		all = append(all, rec)
	}
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+filter.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memAttendanceRepo) snapshot() map[string]attendance.Record {
	cp := make(map[string]attendance.Record, len(m.records))
	for k, v := range m.records {
		cp[k] = v
	}
	return cp
}

// memTx restores the repository state when fn fails.
type memTx struct{ repo *memAttendanceRepo }

func (tx memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := tx.repo.snapshot()
	if err := fn(ctx); err != nil {
		tx.repo.records = snap
		return err
	}
	return nil
}

type memEmployees map[int64]employee.Employee

func (m memEmployees) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	e, ok := m[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T, resolver *stubResolver) (*AttendanceServiceImpl, *memAttendanceRepo) {
	t.Helper()
	repo := newMemAttendanceRepo()
	employees := memEmployees{
		7: {ID: 7, FullName: "Alice", IsActive: true},
		8: {ID: 8, FullName: "Bob", IsActive: false},
	}
	engine := NewEngine(resolver, stubDeductions{tiers: officeTiers()}, stubHolidays{}, DefaultPolicy(), metrics.Nop())
	svc := NewAttendanceService(memTx{repo: repo}, repo, employees, engine).(*AttendanceServiceImpl)
	return svc, repo
}

func TestAttendanceService_RecordPunches(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})
	ctx := context.Background()

	req := attendance.RecordPunchesRequest{EmployeeID: 7, AttendanceDate: "2024-03-04"}
	req.TimeInMorning = strPtr("09:20:00")
	req.TimeOutAfternoon = strPtr("18:00:00")

	resp, err := svc.RecordPunches(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.EmployeeName)
	assert.Equal(t, "biometrics", resp.Source)
	require.NotNil(t, resp.TimeInMorning)
	assert.Equal(t, "09:20:00", *resp.TimeInMorning)
	assert.Zero(t, resp.DaysCredited, "direct writes never run the engine")
	assert.Len(t, repo.records, 1)

	t.Run("inactive employee", func(t *testing.T) {
		req := attendance.RecordPunchesRequest{EmployeeID: 8, AttendanceDate: "2024-03-04"}
		_, err := svc.RecordPunches(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
	})

	t.Run("unknown employee", func(t *testing.T) {
		req := attendance.RecordPunchesRequest{EmployeeID: 99, AttendanceDate: "2024-03-04"}
		_, err := svc.RecordPunches(ctx, req)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		req := attendance.RecordPunchesRequest{EmployeeID: 7, AttendanceDate: "04/03/2024"}
		_, err := svc.RecordPunches(ctx, req)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestAttendanceService_Recompute(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})
	ctx := context.Background()

	_, err := repo.UpsertPunches(ctx, 7, testDate, attendance.Punches{
		TimeInMorning:    clock("09:20:00"),
		TimeOutMorning:   clock("12:00:00"),
		TimeInAfternoon:  clock("13:00:00"),
		TimeOutAfternoon: clock("18:00:00"),
	}, attendance.SourceBiometrics)
	require.NoError(t, err)

	resp, err := svc.Recompute(ctx, attendance.RecomputeRequest{EmployeeID: 7, AttendanceDate: "2024-03-04"})
	require.NoError(t, err)

	assert.Equal(t, "recompute", resp.Source)
	assert.Equal(t, 460, resp.ActualRenderedMinutes)
	assert.Equal(t, 0.05, resp.DeductedDays)
	assert.Equal(t, 0.91, resp.DaysCredited)
	require.NotNil(t, resp.WorkTimeID)
	assert.Equal(t, int64(1), *resp.WorkTimeID)
	require.NotNil(t, resp.LateDebug)
	assert.NotEmpty(t, resp.LateDebug.TraceID)

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.Recompute(ctx, attendance.RecomputeRequest{EmployeeID: 7, AttendanceDate: "2024-03-05"})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})
}

func TestAttendanceService_RecomputeRollsBackOnFailure(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})
	ctx := context.Background()

	_, err := repo.UpsertPunches(ctx, 7, testDate, fullDay(), attendance.SourceBiometrics)
	require.NoError(t, err)
	repo.failOn = "upsert"

	_, err = svc.Recompute(ctx, attendance.RecomputeRequest{EmployeeID: 7, AttendanceDate: "2024-03-04"})
	require.Error(t, err)

	rec, err := repo.GetByEmployeeAndDate(ctx, 7, testDate)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.SourceBiometrics, rec.Source)
	assert.Zero(t, rec.DaysCredited)
}

func TestAttendanceService_RecomputeShiftNotResolved(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{err: schedule.ErrNoShiftResolved})
	ctx := context.Background()

	_, err := repo.UpsertPunches(ctx, 7, testDate, fullDay(), attendance.SourceBiometrics)
	require.NoError(t, err)

	_, err = svc.Recompute(ctx, attendance.RecomputeRequest{EmployeeID: 7, AttendanceDate: "2024-03-04"})
	assert.ErrorIs(t, err, schedule.ErrNoShiftResolved)
}

func TestAttendanceService_PreviewDoesNotPersist(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})

	req := attendance.PreviewRequest{EmployeeID: 7, AttendanceDate: "2024-03-04"}
	req.TimeInMorning = strPtr("09:00:00")
	req.TimeOutMorning = strPtr("12:00:00")
	req.TimeInAfternoon = strPtr("13:00:00")
	req.TimeOutAfternoon = strPtr("18:00:00")

	resp, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.DaysCredited)
	assert.Equal(t, 480, resp.CreditBasisMinutes)
	assert.Empty(t, repo.records)
}

func TestAttendanceService_ListAttendance(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.UpsertPunches(ctx, 7, testDate.AddDate(0, 0, i), fullDay(), attendance.SourceBiometrics)
		require.NoError(t, err)
	}

	resp, err := svc.ListAttendance(ctx, attendance.AttendanceFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, "1-2 of 3", resp.Showing)
	assert.Len(t, resp.Attendances, 2)

	empty, _ := newTestService(t, &stubResolver{shift: officeShift()})
	resp, err = empty.ListAttendance(ctx, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", resp.Showing)
}

func TestAttendanceService_ExportAttendance(t *testing.T) {
	svc, repo := newTestService(t, &stubResolver{shift: officeShift()})
	ctx := context.Background()

	_, err := repo.UpsertPunches(ctx, 7, testDate, fullDay(), attendance.SourceBiometrics)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportAttendance(ctx, attendance.AttendanceFilter{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, "2024-03-04", rows[1][2])
	assert.Equal(t, "09:00:00", rows[1][3])
}
