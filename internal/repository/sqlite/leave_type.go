package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveTypeRepository struct {
	db *sql.DB
}

func NewLeaveTypeRepository(db *sql.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepository{db: db}
}

const leaveTypeSelect = `
	SELECT id, name, description, max_days_per_year, carry_forward, is_active, created_at, updated_at
	FROM leave_types
`

func scanLeaveType(row rowScanner) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(&lt.ID, &lt.Name, &lt.Description, &lt.AnnualAllotment, &lt.CarryForward, &lt.IsActive, &lt.CreatedAt, &lt.UpdatedAt)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) Create(ctx context.Context, lt *leave.LeaveType) error {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate leave type id: %w", err)
	}
	now := time.Now().UTC()
	lt.ID = id.String()
	lt.CreatedAt, lt.UpdatedAt = now, now

	_, err = q.ExecContext(ctx, `
		INSERT INTO leave_types (id, name, description, max_days_per_year, carry_forward, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, lt.ID, lt.Name, lt.Description, lt.AnnualAllotment, lt.CarryForward, lt.IsActive, lt.CreatedAt, lt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.ErrLeaveTypeNameExists
		}
		return fmt.Errorf("failed to create leave type: %w", err)
	}

	return nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	lt, err := scanLeaveType(q.QueryRowContext(ctx, leaveTypeSelect+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	return lt, nil
}

// List implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) List(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveTypeSelect
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	types := make([]leave.LeaveType, 0)
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, lt)
	}

	return types, rows.Err()
}

// SetActive implements leave.LeaveTypeRepository.
func (r *leaveTypeRepository) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE leave_types SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update leave type: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrLeaveTypeNotFound
	}

	return nil
}
