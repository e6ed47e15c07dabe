package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/export"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeLateRequestService struct {
	submitted     []laterequest.SubmitRequest
	statusChanges []laterequest.UpdateStatusRequest
	listFilters   []laterequest.LateRequestFilter
	statusErr     error
	getResult     laterequest.LateRequestResponse
}

func (f *fakeLateRequestService) Submit(ctx context.Context, req laterequest.SubmitRequest) (laterequest.SubmitResponse, error) {
	f.submitted = append(f.submitted, req)
	return laterequest.SubmitResponse{Request: laterequest.LateRequestResponse{ID: 1, EmployeeID: req.EmployeeID, Status: "pending"}}, nil
}

func (f *fakeLateRequestService) UpdateStatus(ctx context.Context, req laterequest.UpdateStatusRequest) (laterequest.StatusChangeResult, error) {
	f.statusChanges = append(f.statusChanges, req)
	if f.statusErr != nil {
		return laterequest.StatusChangeResult{}, f.statusErr
	}
	return laterequest.StatusChangeResult{
		Success:   true,
		RequestID: req.RequestID,
		Status:    laterequest.Status(req.Status),
		Message:   "request " + req.Status,
	}, nil
}

func (f *fakeLateRequestService) Get(ctx context.Context, id int64) (laterequest.LateRequestResponse, error) {
	if f.getResult.ID != id {
		return laterequest.LateRequestResponse{}, laterequest.ErrRequestNotFound
	}
	return f.getResult, nil
}

func (f *fakeLateRequestService) List(ctx context.Context, filter laterequest.LateRequestFilter) (laterequest.ListLateRequestResponse, error) {
	f.listFilters = append(f.listFilters, filter)
	return laterequest.ListLateRequestResponse{}, nil
}

func (f *fakeLateRequestService) RemindPending(ctx context.Context) error { return nil }

type fakeAttendanceService struct {
	recomputeErr error
	listFilters  []attendance.AttendanceFilter
}

func (f *fakeAttendanceService) RecordPunches(ctx context.Context, req attendance.RecordPunchesRequest) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{EmployeeID: req.EmployeeID, Source: "biometrics"}, nil
}

func (f *fakeAttendanceService) Recompute(ctx context.Context, req attendance.RecomputeRequest) (attendance.AttendanceResponse, error) {
	if f.recomputeErr != nil {
		return attendance.AttendanceResponse{}, f.recomputeErr
	}
	return attendance.AttendanceResponse{EmployeeID: req.EmployeeID, DaysCredited: 0.91}, nil
}

func (f *fakeAttendanceService) Preview(ctx context.Context, req attendance.PreviewRequest) (attendance.EvaluationResponse, error) {
	return attendance.EvaluationResponse{DaysCredited: 1}, nil
}

func (f *fakeAttendanceService) GetAttendance(ctx context.Context, id int64) (attendance.AttendanceResponse, error) {
	return attendance.AttendanceResponse{ID: id, EmployeeID: 7}, nil
}

func (f *fakeAttendanceService) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	f.listFilters = append(f.listFilters, filter)
	return attendance.ListAttendanceResponse{}, nil
}

func (f *fakeAttendanceService) ExportAttendance(ctx context.Context, filter attendance.AttendanceFilter, w io.Writer) error {
	return export.WriteXLSX(w, export.Sheet{Name: "Attendance", Headers: []string{"Employee ID"}})
}

type routerFixture struct {
	handler     http.Handler
	jwt         jwt.Service
	lateReqs    *fakeLateRequestService
	attendances *fakeAttendanceService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		jwt:         jwt.NewJWTService(handlerTestSecret),
		lateReqs:    &fakeLateRequestService{},
		attendances: &fakeAttendanceService{},
	}
	f.handler = NewRouter(
		RouterConfig{
			App:       config.AppConfig{Env: "test", Version: "test"},
			LogOutput: io.Discard,
		},
		f.jwt,
		NewAttendanceHandler(f.attendances),
		NewLateRequestHandler(f.lateReqs),
	)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, role user.Role, employeeID *int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if role != "" {
		token, _, err := f.jwt.GenerateAccessToken("user-"+string(role), employeeID, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func int64Ptr(i int64) *int64 { return &i }

func TestRouter_Heartbeat(t *testing.T) {
	f := newRouterFixture(t)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/late-requests", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLateRequest_SubmitDefaultsToCaller(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/late-requests", user.RoleEmployee, int64Ptr(7), map[string]any{
		"attendance_date": "2024-03-04",
		"reason":          "traffic",
		"time_in_morning": "09:00:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.lateReqs.submitted, 1)
	assert.Equal(t, int64(7), f.lateReqs.submitted[0].EmployeeID)
	require.NotNil(t, f.lateReqs.submitted[0].TimeInMorning)
}

func TestLateRequest_SubmitForAnotherEmployeeIsForbidden(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/late-requests", user.RoleEmployee, int64Ptr(7), map[string]any{
		"employee_id":     8,
		"attendance_date": "2024-03-04",
		"reason":          "traffic",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.lateReqs.submitted)
}

func TestLateRequest_ApproveUsesReviewerIdentity(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/late-requests/12/approve", user.RoleHR, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.lateReqs.statusChanges, 1)
	change := f.lateReqs.statusChanges[0]
	assert.Equal(t, int64(12), change.RequestID)
	assert.Equal(t, "approved", change.Status)
	assert.Equal(t, "user-hr", change.ReviewedBy)

	body := decodeBody(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "request approved", body.Message)
}

func TestLateRequest_ReviewRequiresHR(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/late-requests/12/reject", user.RoleEmployee, int64Ptr(7), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.lateReqs.statusChanges)
}

func TestLateRequest_PatchStatusConflict(t *testing.T) {
	f := newRouterFixture(t)
	f.lateReqs.statusErr = laterequest.ErrInvalidTransition

	rec := f.do(t, http.MethodPatch, "/api/v1/late-requests/5/status", user.RoleAdmin, nil, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "CONFLICT", body.Error.Code)
}

func TestLateRequest_ListScopesEmployees(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/late-requests?employee_id=99&status=pending", user.RoleEmployee, int64Ptr(7), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.lateReqs.listFilters, 1)
	require.NotNil(t, f.lateReqs.listFilters[0].EmployeeID)
	assert.Equal(t, int64(7), *f.lateReqs.listFilters[0].EmployeeID)
	assert.Equal(t, "pending", *f.lateReqs.listFilters[0].Status)
}

func TestLateRequest_GetHidesOtherEmployees(t *testing.T) {
	f := newRouterFixture(t)
	f.lateReqs.getResult = laterequest.LateRequestResponse{ID: 3, EmployeeID: 8}

	rec := f.do(t, http.MethodGet, "/api/v1/late-requests/3", user.RoleEmployee, int64Ptr(7), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/late-requests/3", user.RoleHR, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendance_RecomputeShiftNotResolved(t *testing.T) {
	f := newRouterFixture(t)
	f.attendances.recomputeErr = schedule.ErrNoShiftResolved

	rec := f.do(t, http.MethodPost, "/api/v1/attendances/recompute", user.RoleHR, nil, map[string]any{
		"employee_id":     7,
		"attendance_date": "2024-03-04",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "SHIFT_NOT_RESOLVED", decodeBody(t, rec).Error.Code)
}

func TestAttendance_PunchesRequireImporterPermission(t *testing.T) {
	f := newRouterFixture(t)
	payload := map[string]any{"employee_id": 7, "attendance_date": "2024-03-04"}

	rec := f.do(t, http.MethodPost, "/api/v1/attendances/punches", user.RoleEmployee, int64Ptr(7), payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/attendances/punches", user.RoleImporter, nil, payload)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAttendance_Export(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/attendances/export?start_date=2024-03-01", user.RoleHR, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;"))
	assert.NotZero(t, rec.Body.Len())
}

func TestAttendance_ListScopesEmployees(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/attendances?employee_id=99", user.RoleEmployee, int64Ptr(7), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.attendances.listFilters, 1)
	assert.Equal(t, int64(7), *f.attendances.listFilters[0].EmployeeID)
}
