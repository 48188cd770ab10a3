package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
)

// LeaveService is the leave workflow. Every operation receives the acting
// identity explicitly; authorization is decided by the caller.
type LeaveService interface {
	ApplyLeave(ctx context.Context, actor auth.Actor, req ApplyLeaveRequest) (LeaveRequest, error)
	ApproveLeave(ctx context.Context, actor auth.Actor, requestID, comments string) (LeaveRequest, error)
	RejectLeave(ctx context.Context, actor auth.Actor, requestID, comments string) (LeaveRequest, error)
	CancelLeave(ctx context.Context, actor auth.Actor, requestID string) (LeaveRequest, error)

	PreviewWorkingDays(ctx context.Context, start, end time.Time) (int, error)

	InitializeBalances(ctx context.Context, employeeID string, year int) (int, error)
	GetBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)

	GetRequest(ctx context.Context, requestID string) (LeaveRequest, error)
	ListEmployeeRequests(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListTeamRequests(ctx context.Context, managerID string) ([]LeaveRequest, error)
	ListPendingRequests(ctx context.Context, managerID string) ([]LeaveRequest, error)

	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveType, error)
	SetLeaveTypeActive(ctx context.Context, id string, active bool) error
}
