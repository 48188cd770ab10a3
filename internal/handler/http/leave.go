package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/leave-ledger/internal/service/access"
)

type LeaveHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)
	CreateType(w http.ResponseWriter, r *http.Request)
	SetTypeActive(w http.ResponseWriter, r *http.Request)

	GetMyBalances(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalances(w http.ResponseWriter, r *http.Request)
	InitializeBalances(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetTeamRequests(w http.ResponseWriter, r *http.Request)
	GetPendingRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	PreviewWorkingDays(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	policy       *access.Policy
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService, policy *access.Policy) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		policy:       policy,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListTypes implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	activeOnly := !getBoolQueryParam(r, "include_inactive", false)

	types, err := l.leaveService.ListLeaveTypes(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]leave.LeaveTypeResponse, len(types))
	for i, lt := range types {
		out[i] = leave.ToLeaveTypeResponse(lt)
	}
	response.Success(w, out)
}

// CreateType implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	lt, err := l.leaveService.CreateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", leave.ToLeaveTypeResponse(lt))
}

// SetTypeActive implements LeaveHandler.
func (l *LeaveHandlerImpl) SetTypeActive(w http.ResponseWriter, r *http.Request) {
	var req leave.SetLeaveTypeActiveRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveTypeNotFound)
	if !ok {
		return
	}
	if err := l.leaveService.SetLeaveTypeActive(r.Context(), id, *req.IsActive); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type updated successfully", nil)
}

// GetMyBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	year, ok := yearParam(w, r, l.now())
	if !ok {
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), actor.EmployeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveBalanceResponses(balances))
}

// GetEmployeeBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	year, ok := yearParam(w, r, l.now())
	if !ok {
		return
	}

	employeeID, ok := pathID(w, r, "employeeID", employee.ErrEmployeeNotFound)
	if !ok {
		return
	}
	if err := l.policy.CanViewEmployee(r.Context(), actor, employeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	balances, err := l.leaveService.GetBalances(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveBalanceResponses(balances))
}

// InitializeBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) InitializeBalances(w http.ResponseWriter, r *http.Request) {
	var req leave.InitializeBalancesRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := l.leaveService.InitializeBalances(r.Context(), req.EmployeeID, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balances initialized", leave.InitializeBalancesResponse{
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Created:    created,
	})
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := l.leaveService.ApplyLeave(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", leave.ToLeaveRequestResponse(created))
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	reqs, err := l.leaveService.ListEmployeeRequests(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveRequestResponses(reqs))
}

// GetTeamRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetTeamRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	reqs, err := l.leaveService.ListTeamRequests(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveRequestResponses(reqs))
}

// GetPendingRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	reqs, err := l.leaveService.ListPendingRequests(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveRequestResponses(reqs))
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}
	req, err := l.leaveService.GetRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := l.policy.CanViewRequest(r.Context(), actor, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.ToLeaveRequestResponse(req))
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.ApproveLeave, "Leave request approved successfully")
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.RejectLeave, "Leave request rejected successfully")
}

type decisionFunc func(ctx context.Context, actor auth.Actor, requestID, comments string) (leave.LeaveRequest, error)

func (l *LeaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc, message string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	var body leave.DecisionRequest
	if !decodeJSON(w, r, &body, true) {
		return
	}
	if err := body.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	current, err := l.leaveService.GetRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := l.policy.CanDecide(r.Context(), actor, current); err != nil {
		response.HandleError(w, err)
		return
	}

	decided, err := fn(r.Context(), actor, current.ID, body.Comments)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, leave.ToLeaveRequestResponse(decided))
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	current, err := l.leaveService.GetRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := l.policy.CanCancel(r.Context(), actor, current); err != nil {
		response.HandleError(w, err)
		return
	}

	cancelled, err := l.leaveService.CancelLeave(r.Context(), actor, current.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", leave.ToLeaveRequestResponse(cancelled))
}

// PreviewWorkingDays implements LeaveHandler.
func (l *LeaveHandlerImpl) PreviewWorkingDays(w http.ResponseWriter, r *http.Request) {
	startStr, endStr := r.URL.Query().Get("start"), r.URL.Query().Get("end")

	var errs validator.ValidationErrors
	start, ok := validator.IsValidDate(startStr)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be in YYYY-MM-DD format"})
	}
	end, ok := validator.IsValidDate(endStr)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	days, err := l.leaveService.PreviewWorkingDays(r.Context(), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.WorkingDaysResponse{
		StartDate:   start.Format(holiday.DateLayout),
		EndDate:     end.Format(holiday.DateLayout),
		WorkingDays: days,
	})
}
