// Package access decides who may read or act on leave records.
// A caller may act on their own records, their direct reports' records
// (managers) or everyone's (admins).
package access

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
)

type Policy struct {
	employees employee.Repository
}

func NewPolicy(employees employee.Repository) *Policy {
	return &Policy{employees: employees}
}

// Require returns the matching 403 error when the actor lacks permission.
func Require(actor auth.Actor, permission auth.Permission) error {
	if actor.Can(permission) {
		return nil
	}
	switch permission {
	case auth.PermissionLeaveViewTeam, auth.PermissionLeaveApprove:
		return auth.ErrManagerAccessRequired
	case auth.PermissionLeaveViewAll, auth.PermissionLeaveManageTypes, auth.PermissionBalanceInit,
		auth.PermissionHolidayManage, auth.PermissionAuditView:
		return auth.ErrAdminAccessRequired
	default:
		return auth.ErrForbidden
	}
}

func (p *Policy) isDirectManager(ctx context.Context, actor auth.Actor, employeeID string) (bool, error) {
	managerID, ok, err := p.employees.GetManagerID(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("lookup manager of %s: %w", employeeID, err)
	}
	return ok && managerID == actor.EmployeeID, nil
}

// CanViewEmployee allows the employee, their direct manager and admins.
func (p *Policy) CanViewEmployee(ctx context.Context, actor auth.Actor, employeeID string) error {
	if actor.EmployeeID == employeeID || actor.Can(auth.PermissionLeaveViewAll) {
		return nil
	}
	if !actor.Can(auth.PermissionLeaveViewTeam) {
		return auth.ErrForbidden
	}
	ok, err := p.isDirectManager(ctx, actor, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrForbidden
	}
	return nil
}

// CanViewRequest applies CanViewEmployee to the requester.
func (p *Policy) CanViewRequest(ctx context.Context, actor auth.Actor, req leave.LeaveRequest) error {
	return p.CanViewEmployee(ctx, actor, req.EmployeeID)
}

// CanDecide allows the requester's direct manager and admins to approve or
// reject. Nobody decides their own request.
func (p *Policy) CanDecide(ctx context.Context, actor auth.Actor, req leave.LeaveRequest) error {
	if err := Require(actor, auth.PermissionLeaveApprove); err != nil {
		return err
	}
	if actor.EmployeeID == req.EmployeeID {
		return auth.ErrForbidden
	}
	if actor.Can(auth.PermissionLeaveViewAll) {
		return nil
	}
	ok, err := p.isDirectManager(ctx, actor, req.EmployeeID)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrForbidden
	}
	return nil
}

// CanCancel allows the requester, their direct manager and admins.
func (p *Policy) CanCancel(ctx context.Context, actor auth.Actor, req leave.LeaveRequest) error {
	if err := Require(actor, auth.PermissionLeaveCancel); err != nil {
		return err
	}
	return p.CanViewEmployee(ctx, actor, req.EmployeeID)
}
