package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
)

// UnitOfWork runs fn atomically. Repositories called with the ctx handed to fn
// take part in the same transaction; any error returned by fn rolls everything back.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type BalanceReader interface {
	GetBalances(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
}

// BalanceLedger mutations are issued by the leave service only.
type BalanceLedger interface {
	BalanceReader

	// InitializeBalances creates missing buckets for every active leave type and
	// returns how many were created. Existing buckets are left untouched.
	InitializeBalances(ctx context.Context, employeeID string, year int) (int, error)

	// DeductBalance adds days to used_days only if enough remain, in one statement.
	// It returns false without mutating when the bucket is missing or short.
	DeductBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error)

	// CreditBalance subtracts days from used_days, floored at zero.
	CreditBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) error
}

type RequestStore interface {
	Create(ctx context.Context, req *LeaveRequest) error
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListByManager(ctx context.Context, managerID string) ([]LeaveRequest, error)
	ListPendingByManager(ctx context.Context, managerID string) ([]LeaveRequest, error)
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// LockEmployee serializes applications of one employee until the
	// surrounding unit of work ends. Outside a unit of work it only checks existence.
	LockEmployee(ctx context.Context, employeeID string) error
	Transition(ctx context.Context, t Transition) (bool, error)
}

type LeaveTypeRepository interface {
	Create(ctx context.Context, lt *LeaveType) error
	GetByID(ctx context.Context, id string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// HolidayCalendar resolves the non-working dates of a year.
type HolidayCalendar interface {
	HolidaysForYear(ctx context.Context, year int) (holiday.Set, error)
}

// DecisionNotifier tells the requester their request changed status.
type DecisionNotifier interface {
	NotifyLeaveDecision(ctx context.Context, req LeaveRequest) error
}

type AuditSink interface {
	Record(ctx context.Context, entry audit.Entry) error
}
