package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	db *sql.DB
}

func NewLeaveRequestRepository(db *sql.DB) leave.RequestStore {
	return &leaveRequestRepository{db: db}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
		   lr.total_days, lr.reason, lr.status, lr.approver_id, lr.approver_comments,
		   lr.applied_at, lr.actioned_at, lr.updated_at,
		   e.full_name, lt.name
	FROM leave_requests lr
	JOIN employees e ON lr.employee_id = e.id
	JOIN leave_types lt ON lr.leave_type_id = lt.id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var (
		req        leave.LeaveRequest
		start, end string
		status     string
	)
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &start, &end,
		&req.TotalDays, &req.Reason, &status, &req.ApproverID, &req.ApproverComments,
		&req.AppliedAt, &req.ActionedAt, &req.UpdatedAt,
		&req.EmployeeName, &req.LeaveTypeName,
	); err != nil {
		return leave.LeaveRequest{}, err
	}

	var err error
	if req.StartDate, err = parseDate(start); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid start_date %q: %w", start, err)
	}
	if req.EndDate, err = parseDate(end); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid end_date %q: %w", end, err)
	}
	if req.Status, err = leave.ParseStatus(status); err != nil {
		return leave.LeaveRequest{}, err
	}
	return req, nil
}

func (r *leaveRequestRepository) list(ctx context.Context, where, orderBy string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, leaveRequestSelect+" WHERE "+where+" ORDER BY "+orderBy, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// Create implements leave.RequestStore.
func (r *leaveRequestRepository) Create(ctx context.Context, req *leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate leave request id: %w", err)
	}

	now := time.Now().UTC()
	req.ID = id.String()
	req.Status = leave.StatusPending
	req.ApproverID, req.ApproverComments, req.ActionedAt = nil, nil, nil
	req.AppliedAt, req.UpdatedAt = now, now

	_, err = q.ExecContext(ctx, `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date,
			total_days, reason, status, applied_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.ID, req.EmployeeID, req.LeaveTypeID, formatDate(req.StartDate), formatDate(req.EndDate),
		req.TotalDays, req.Reason, string(req.Status), req.AppliedAt, req.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return leave.ErrLeaveTypeNotFound
		}
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	return nil
}

// GetByID implements leave.RequestStore.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRowContext(ctx, leaveRequestSelect+" WHERE lr.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

// ListByEmployee implements leave.RequestStore.
func (r *leaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "lr.employee_id = ?", "lr.applied_at DESC", employeeID)
}

// ListByManager implements leave.RequestStore.
func (r *leaveRequestRepository) ListByManager(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "e.manager_id = ?", "lr.applied_at DESC", managerID)
}

// ListPendingByManager implements leave.RequestStore.
func (r *leaveRequestRepository) ListPendingByManager(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "e.manager_id = ? AND lr.status = ?", "lr.applied_at ASC", managerID, string(leave.StatusPending))
}

// HasOverlap implements leave.RequestStore.
func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	held := leave.DateHoldingStatuses()
	args := make([]interface{}, 0, len(held)+3)
	args = append(args, employeeID)
	for _, st := range held {
		args = append(args, st)
	}
	args = append(args, formatDate(start), formatDate(end))

	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = ?
			  AND status IN (`+strings.TrimSuffix(strings.Repeat("?, ", len(held)), ", ")+`)
			  AND NOT (end_date < ? OR start_date > ?)
		)
	`, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// LockEmployee implements leave.RequestStore. Units of work begin IMMEDIATE,
// so the write lock is already held; only existence is checked here.
func (r *leaveRequestRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM employees WHERE id = ?`, employeeID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}

	return nil
}

// Transition implements leave.RequestStore.
func (r *leaveRequestRepository) Transition(ctx context.Context, t leave.Transition) (bool, error) {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?,
			approver_id = COALESCE(?, approver_id),
			approver_comments = COALESCE(?, approver_comments),
			actioned_at = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`, string(t.To), t.ApproverID, t.Comments, t.At, time.Now().UTC(), t.RequestID, string(t.From))
	if err != nil {
		return false, fmt.Errorf("failed to transition leave request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
