package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LateRequestHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type lateRequestHandlerImpl struct {
	lateRequestService laterequest.LateRequestService
}

func NewLateRequestHandler(lateRequestService laterequest.LateRequestService) LateRequestHandler {
	return &lateRequestHandlerImpl{
		lateRequestService: lateRequestService,
	}
}

// Submit implements LateRequestHandler.
func (h *lateRequestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	var req laterequest.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if req.EmployeeID == 0 && identity.EmployeeID != nil {
		req.EmployeeID = *identity.EmployeeID
	}
	if !identity.IsReviewer() && !identity.OwnsEmployee(req.EmployeeID) {
		response.HandleError(w, user.ErrForeignEmployee)
		return
	}

	result, err := h.lateRequestService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Late attendance request submitted", result)
}

// List implements LateRequestHandler.
func (h *lateRequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	var filter laterequest.LateRequestFilter
	query := r.URL.Query()

	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		if id, err := strconv.ParseInt(employeeID, 10, 64); err == nil {
			filter.EmployeeID = &id
		}
	}
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}
	if page := query.Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := query.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	// Employees only see their own requests
	if !identity.IsReviewer() {
		if identity.EmployeeID == nil {
			response.HandleError(w, user.ErrForeignEmployee)
			return
		}
		filter.EmployeeID = identity.EmployeeID
	}

	result, err := h.lateRequestService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements LateRequestHandler.
func (h *lateRequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request id", nil)
		return
	}

	result, err := h.lateRequestService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !identity.IsReviewer() && !identity.OwnsEmployee(result.EmployeeID) {
		response.HandleError(w, laterequest.ErrRequestNotFound)
		return
	}

	response.Success(w, result)
}

// Approve implements LateRequestHandler.
func (h *lateRequestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, string(laterequest.StatusApproved))
}

// Reject implements LateRequestHandler.
func (h *lateRequestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, string(laterequest.StatusRejected))
}

// UpdateStatus implements LateRequestHandler.
func (h *lateRequestHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	h.changeStatus(w, r, body.Status)
}

func (h *lateRequestHandlerImpl) changeStatus(w http.ResponseWriter, r *http.Request, status string) {
	identity, ok := middleware.Identity(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request id", nil)
		return
	}

	result, err := h.lateRequestService.UpdateStatus(r.Context(), laterequest.UpdateStatusRequest{
		RequestID:  id,
		Status:     status,
		ReviewedBy: identity.UserID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}
