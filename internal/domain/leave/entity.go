package leave

import (
	"fmt"
	"time"
)

// BackdateLimitDays is how far in the past a new request may start.
const BackdateLimitDays = 7

// Status is the lifecycle state of a leave request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

// ParseStatus converts a stored or user-supplied value to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown leave status %q", ErrInvalidInput, s)
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected || next == StatusCancelled
	case StatusApproved:
		return next == StatusCancelled
	case StatusRejected, StatusCancelled:
		return false
	default:
		panic(fmt.Sprintf("leave: unhandled status %q", string(s)))
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled:
		return true
	case StatusPending, StatusApproved:
		return false
	default:
		panic(fmt.Sprintf("leave: unhandled status %q", string(s)))
	}
}

// HoldsDates reports whether a request in this status blocks overlapping applications.
func (s Status) HoldsDates() bool {
	return s == StatusPending || s == StatusApproved
}

// DateHoldingStatuses lists, as stored strings, every status for which HoldsDates is true.
func DateHoldingStatuses() []string {
	held := make([]string, 0, len(allStatuses))
	for _, st := range allStatuses {
		if st.HoldsDates() {
			held = append(held, string(st))
		}
	}
	return held
}

func (s Status) String() string {
	return string(s)
}

// LeaveType entity
type LeaveType struct {
	ID              string
	Name            string
	Description     *string
	AnnualAllotment int
	CarryForward    bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaveBalance is one ledger bucket: (employee, leave type, year).
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int
	TotalDays   int
	UsedDays    int
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Join
	LeaveTypeName string
}

// RemainingDays returns total minus used days.
func (b LeaveBalance) RemainingDays() int {
	return b.TotalDays - b.UsedDays
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	TotalDays   int
	Reason      string
	Status      Status

	// Nil until the request has been actioned.
	ApproverID       *string
	ApproverComments *string
	ActionedAt       *time.Time

	AppliedAt time.Time
	UpdatedAt time.Time

	// Join
	EmployeeName  string
	LeaveTypeName string
}

// Approver returns the id of the manager who actioned the request, if any.
func (r LeaveRequest) Approver() (string, bool) {
	if r.ApproverID == nil {
		return "", false
	}
	return *r.ApproverID, true
}

// Comments returns the approver's comments, if any.
func (r LeaveRequest) Comments() (string, bool) {
	if r.ApproverComments == nil {
		return "", false
	}
	return *r.ApproverComments, true
}

// BalanceYear is the ledger year the request draws from.
func (r LeaveRequest) BalanceYear() int {
	return r.StartDate.Year()
}

// Transition describes a guarded status change of a single request.
// The write applies only while the stored status still equals From.
type Transition struct {
	RequestID  string
	From       Status
	To         Status
	ApproverID *string
	Comments   *string
	At         time.Time
}
