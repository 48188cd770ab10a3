package access

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

type managers struct {
	employee.Repository
	byEmployee map[string]string
	err        error
}

func (m managers) GetManagerID(_ context.Context, employeeID string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	id, ok := m.byEmployee[employeeID]
	return id, ok, nil
}

var (
	admin    = auth.Actor{EmployeeID: "hr-1", Role: auth.RoleAdmin}
	manager  = auth.Actor{EmployeeID: "mgr-1", Role: auth.RoleManager}
	other    = auth.Actor{EmployeeID: "mgr-2", Role: auth.RoleManager}
	owner    = auth.Actor{EmployeeID: "emp-1", Role: auth.RoleEmployee}
	stranger = auth.Actor{EmployeeID: "emp-9", Role: auth.RoleEmployee}
)

func newPolicy() *Policy {
	return NewPolicy(managers{byEmployee: map[string]string{"emp-1": "mgr-1", "mgr-1": "hr-1"}})
}

func TestCanViewEmployee(t *testing.T) {
	p := newPolicy()
	ctx := context.Background()

	tests := []struct {
		name  string
		actor auth.Actor
		want  error
	}{
		{"owner", owner, nil},
		{"direct manager", manager, nil},
		{"admin", admin, nil},
		{"other manager", other, auth.ErrForbidden},
		{"other employee", stranger, auth.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CanViewEmployee(ctx, tt.actor, "emp-1")
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCanDecide(t *testing.T) {
	p := newPolicy()
	ctx := context.Background()
	req := leave.LeaveRequest{ID: "req-1", EmployeeID: "emp-1"}

	assert.NoError(t, p.CanDecide(ctx, manager, req))
	assert.NoError(t, p.CanDecide(ctx, admin, req))
	assert.ErrorIs(t, p.CanDecide(ctx, other, req), auth.ErrForbidden)
	assert.ErrorIs(t, p.CanDecide(ctx, owner, req), auth.ErrManagerAccessRequired)

	own := leave.LeaveRequest{ID: "req-2", EmployeeID: "mgr-1"}
	assert.ErrorIs(t, p.CanDecide(ctx, manager, own), auth.ErrForbidden)
	assert.NoError(t, p.CanDecide(ctx, admin, own))
}

func TestCanCancel(t *testing.T) {
	p := newPolicy()
	ctx := context.Background()
	req := leave.LeaveRequest{ID: "req-1", EmployeeID: "emp-1"}

	assert.NoError(t, p.CanCancel(ctx, owner, req))
	assert.NoError(t, p.CanCancel(ctx, manager, req))
	assert.NoError(t, p.CanCancel(ctx, admin, req))
	assert.ErrorIs(t, p.CanCancel(ctx, stranger, req), auth.ErrForbidden)
}

func TestManagerLookupFailure(t *testing.T) {
	boom := errors.New("db down")
	p := NewPolicy(managers{err: boom})

	err := p.CanViewRequest(context.Background(), manager, leave.LeaveRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, boom)
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(admin, auth.PermissionAuditView))
	assert.ErrorIs(t, Require(manager, auth.PermissionAuditView), auth.ErrAdminAccessRequired)
	assert.ErrorIs(t, Require(owner, auth.PermissionLeaveViewTeam), auth.ErrManagerAccessRequired)
	assert.ErrorIs(t, Require(auth.Actor{Role: "guest"}, auth.PermissionLeaveApply), auth.ErrForbidden)
}
