package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestStore {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date,
	lr.total_days, lr.reason, lr.status, lr.approver_id, lr.approver_comments,
	lr.applied_at, lr.actioned_at, lr.updated_at,
	e.full_name, lt.name
`

const leaveRequestJoins = `
	FROM leave_requests lr
	JOIN employees e ON lr.employee_id = e.id
	JOIN leave_types lt ON lr.leave_type_id = lt.id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var (
		req    leave.LeaveRequest
		status string
	)
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
		&req.TotalDays, &req.Reason, &status, &req.ApproverID, &req.ApproverComments,
		&req.AppliedAt, &req.ActionedAt, &req.UpdatedAt,
		&req.EmployeeName, &req.LeaveTypeName,
	); err != nil {
		return leave.LeaveRequest{}, err
	}

	st, err := leave.ParseStatus(status)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	req.Status = st
	return req, nil
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, where, orderBy string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveRequestColumns + leaveRequestJoins + " WHERE " + where + " ORDER BY " + orderBy

	rows, err := q.Query(ctx, query, args...)
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
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req *leave.LeaveRequest) error {
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

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date,
			total_days, reason, status, applied_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = q.Exec(ctx, query,
		req.ID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.TotalDays, req.Reason, string(req.Status), req.AppliedAt, req.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return leave.ErrLeaveTypeNotFound
		}
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	return nil
}

// GetByID implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveRequestColumns + leaveRequestJoins + " WHERE lr.id = $1"

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

// ListByEmployee implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "lr.employee_id = $1", "lr.applied_at DESC", employeeID)
}

// ListByManager implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) ListByManager(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "e.manager_id = $1", "lr.applied_at DESC", managerID)
}

// ListPendingByManager implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) ListPendingByManager(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	return r.list(ctx, "e.manager_id = $1 AND lr.status = $2", "lr.applied_at ASC", managerID, string(leave.StatusPending))
}

// HasOverlap implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status = ANY($2)
			  AND NOT (end_date < $3 OR start_date > $4)
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID, leave.DateHoldingStatuses(), start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// LockEmployee implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == pgInvalidTextRepresentation {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}

	return nil
}

// Transition implements leave.RequestStore.
func (r *leaveRequestRepositoryImpl) Transition(ctx context.Context, t leave.Transition) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $3,
			approver_id = COALESCE($4, approver_id),
			approver_comments = COALESCE($5, approver_comments),
			actioned_at = $6,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, t.RequestID, string(t.From), string(t.To), t.ApproverID, t.Comments, t.At)
	if err != nil {
		return false, fmt.Errorf("failed to transition leave request: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
