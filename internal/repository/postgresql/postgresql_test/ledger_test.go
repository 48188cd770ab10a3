package postgresql_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDeductAndCredit(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	ledger := postgresql.NewLeaveBalanceRepository(s.DB)

	created, err := ledger.InitializeBalances(ctx, s.EmployeeID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = ledger.InitializeBalances(ctx, s.EmployeeID, 2025)
	require.NoError(t, err)
	assert.Zero(t, created)

	ok, err := ledger.DeductBalance(ctx, s.EmployeeID, sickLeaveID, 2025, 8)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.DeductBalance(ctx, s.EmployeeID, sickLeaveID, 2025, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ledger.DeductBalance(ctx, s.EmployeeID, sickLeaveID, 2030, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.CreditBalance(ctx, s.EmployeeID, sickLeaveID, 2025, 50))
	b, err := ledger.GetBalance(ctx, s.EmployeeID, sickLeaveID, 2025)
	require.NoError(t, err)
	assert.Zero(t, b.UsedDays)
	assert.Equal(t, "Sick Leave", b.LeaveTypeName)

	err = ledger.CreditBalance(ctx, s.EmployeeID, sickLeaveID, 2030, 1)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestConcurrentDeductsNeverOverdraw(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	ledger := postgresql.NewLeaveBalanceRepository(s.DB)
	uow := postgresql.NewUnitOfWork(s.DB)

	_, err := ledger.InitializeBalances(ctx, s.EmployeeID, 2025)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = uow.WithinTransaction(ctx, func(ctx context.Context) error {
				ok, err := ledger.DeductBalance(ctx, s.EmployeeID, annualLeaveID, 2025, 3)
				if err == nil && ok {
					succeeded.Add(1)
				}
				return err
			})
		}()
	}
	wg.Wait()

	b, err := ledger.GetBalance(ctx, s.EmployeeID, annualLeaveID, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(6), succeeded.Load())
	assert.Equal(t, 18, b.UsedDays)
}

func TestRequestTransitionGuard(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	requests := postgresql.NewLeaveRequestRepository(s.DB)

	req := &leave.LeaveRequest{
		EmployeeID:  s.EmployeeID,
		LeaveTypeID: annualLeaveID,
		StartDate:   time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
		TotalDays:   3,
		Reason:      "conference",
	}
	require.NoError(t, requests.Create(ctx, req))
	assert.Equal(t, leave.StatusPending, req.Status)

	overlap, err := requests.HasOverlap(ctx, s.EmployeeID, req.EndDate, req.EndDate.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.True(t, overlap)

	comments := "approved"
	move := leave.Transition{
		RequestID:  req.ID,
		From:       leave.StatusPending,
		To:         leave.StatusApproved,
		ApproverID: &s.ManagerID,
		Comments:   &comments,
		At:         time.Now().UTC(),
	}
	ok, err := requests.Transition(ctx, move)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = requests.Transition(ctx, move)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	approver, ok := got.Approver()
	require.True(t, ok)
	assert.Equal(t, s.ManagerID, approver)

	pending, err := requests.ListPendingByManager(ctx, s.ManagerID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	team, err := requests.ListByManager(ctx, s.ManagerID)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "Annual Leave", team[0].LeaveTypeName)
}

func TestLockEmployeeSerializesApplications(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	requests := postgresql.NewLeaveRequestRepository(s.DB)
	uow := postgresql.NewUnitOfWork(s.DB)
	start := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = uow.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := requests.LockEmployee(ctx, s.EmployeeID); err != nil {
					return err
				}
				overlap, err := requests.HasOverlap(ctx, s.EmployeeID, start, end)
				if err != nil || overlap {
					return err
				}
				time.Sleep(20 * time.Millisecond)
				req := &leave.LeaveRequest{EmployeeID: s.EmployeeID, LeaveTypeID: annualLeaveID, StartDate: start, EndDate: end, TotalDays: 3, Reason: "offsite"}
				if err := requests.Create(ctx, req); err != nil {
					return err
				}
				created.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), created.Load())

	assert.ErrorIs(t, requests.LockEmployee(ctx, "not-a-uuid"), employee.ErrEmployeeNotFound)
}

func TestHolidayRepository(t *testing.T) {
	s := NewTestDatabase(t)
	ctx := context.Background()
	holidays := postgresql.NewHolidayRepository(s.DB)

	h := &holiday.Holiday{Name: "New Year", Date: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, holidays.Create(ctx, h))
	dup := &holiday.Holiday{Name: "Duplicate", Date: h.Date}
	assert.ErrorIs(t, holidays.Create(ctx, dup), holiday.ErrHolidayDateExists)

	list, err := holidays.GetByYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := holidays.Delete(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2025, deleted.Year())

	_, err = holidays.Delete(ctx, h.ID)
	assert.ErrorIs(t, err, holiday.ErrHolidayNotFound)
}
