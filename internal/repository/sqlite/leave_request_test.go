package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(employeeID string, start, end time.Time, days int) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		EmployeeID:  employeeID,
		LeaveTypeID: annualLeaveID,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   days,
		Reason:      "family trip",
	}
}

func TestLeaveRequestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewLeaveRequestRepository(f.db)

	req := newRequest(f.employeeID, date(2025, time.June, 2), date(2025, time.June, 6), 5)
	require.NoError(t, repo.Create(ctx, req))
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, leave.StatusPending, req.Status)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 2), got.StartDate)
	assert.Equal(t, date(2025, time.June, 6), got.EndDate)
	assert.Equal(t, 5, got.TotalDays)
	assert.Equal(t, "Eli Employee", got.EmployeeName)
	assert.Equal(t, "Annual Leave", got.LeaveTypeName)
	_, hasApprover := got.Approver()
	assert.False(t, hasApprover)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	bad := newRequest(f.employeeID, date(2025, time.July, 1), date(2025, time.July, 1), 1)
	bad.LeaveTypeID = "no-such-type"
	assert.ErrorIs(t, repo.Create(ctx, bad), leave.ErrLeaveTypeNotFound)
}

func TestLeaveRequestOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewLeaveRequestRepository(f.db)

	req := newRequest(f.employeeID, date(2025, time.June, 2), date(2025, time.June, 6), 5)
	require.NoError(t, repo.Create(ctx, req))

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"shares the last day", date(2025, time.June, 6), date(2025, time.June, 9), true},
		{"encloses the range", date(2025, time.May, 30), date(2025, time.June, 10), true},
		{"inside the range", date(2025, time.June, 3), date(2025, time.June, 3), true},
		{"ends the day before", date(2025, time.May, 26), date(2025, time.June, 1), false},
		{"starts the day after", date(2025, time.June, 7), date(2025, time.June, 9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.HasOverlap(ctx, f.employeeID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	other, err := repo.HasOverlap(ctx, f.managerID, req.StartDate, req.EndDate)
	require.NoError(t, err)
	assert.False(t, other, "overlap is scoped to the employee")

	_, err = repo.Transition(ctx, leave.Transition{
		RequestID: req.ID,
		From:      leave.StatusPending,
		To:        leave.StatusRejected,
		At:        time.Now().UTC(),
	})
	require.NoError(t, err)

	freed, err := repo.HasOverlap(ctx, f.employeeID, req.StartDate, req.EndDate)
	require.NoError(t, err)
	assert.False(t, freed, "rejected requests release their dates")
}

func TestLeaveRequestTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewLeaveRequestRepository(f.db)

	req := newRequest(f.employeeID, date(2025, time.June, 2), date(2025, time.June, 3), 2)
	require.NoError(t, repo.Create(ctx, req))

	comments := "enjoy"
	approve := leave.Transition{
		RequestID:  req.ID,
		From:       leave.StatusPending,
		To:         leave.StatusApproved,
		ApproverID: &f.managerID,
		Comments:   &comments,
		At:         time.Now().UTC(),
	}
	ok, err := repo.Transition(ctx, approve)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, approve)
	require.NoError(t, err)
	assert.False(t, ok, "stale source status must not write")

	cancel := leave.Transition{
		RequestID: req.ID,
		From:      leave.StatusApproved,
		To:        leave.StatusCancelled,
		At:        time.Now().UTC(),
	}
	ok, err = repo.Transition(ctx, cancel)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, got.Status)
	approver, ok := got.Approver()
	require.True(t, ok, "cancelling keeps the original approver")
	assert.Equal(t, f.managerID, approver)
	c, ok := got.Comments()
	require.True(t, ok)
	assert.Equal(t, "enjoy", c)
	assert.NotNil(t, got.ActionedAt)
}

func TestLeaveRequestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewLeaveRequestRepository(f.db)

	first := newRequest(f.employeeID, date(2025, time.June, 2), date(2025, time.June, 2), 1)
	second := newRequest(f.employeeID, date(2025, time.July, 7), date(2025, time.July, 8), 2)
	own := newRequest(f.managerID, date(2025, time.June, 2), date(2025, time.June, 2), 1)
	for _, r := range []*leave.LeaveRequest{first, second, own} {
		require.NoError(t, repo.Create(ctx, r))
	}
	_, err := repo.Transition(ctx, leave.Transition{RequestID: second.ID, From: leave.StatusPending, To: leave.StatusApproved, ApproverID: &f.managerID, At: time.Now().UTC()})
	require.NoError(t, err)

	mine, err := repo.ListByEmployee(ctx, f.employeeID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	team, err := repo.ListByManager(ctx, f.managerID)
	require.NoError(t, err)
	assert.Len(t, team, 2, "the manager's own request is not part of the team view")

	pending, err := repo.ListPendingByManager(ctx, f.managerID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	none, err := repo.ListByEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLockEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewLeaveRequestRepository(f.db)

	err := sqlite.NewUnitOfWork(f.db).WithinTransaction(ctx, func(ctx context.Context) error {
		return repo.LockEmployee(ctx, f.employeeID)
	})
	assert.NoError(t, err)
	assert.ErrorIs(t, repo.LockEmployee(ctx, "missing"), employee.ErrEmployeeNotFound)
}
