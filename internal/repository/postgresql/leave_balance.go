package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceLedger {
	return &leaveBalanceRepositoryImpl{db: db}
}

// InitializeBalances implements leave.BalanceLedger.
func (r *leaveBalanceRepositoryImpl) InitializeBalances(ctx context.Context, employeeID string, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (id, employee_id, leave_type_id, year, total_days, used_days, created_at, updated_at)
		SELECT gen_random_uuid(), $1::uuid, lt.id, $2::int, lt.max_days_per_year, 0, NOW(), NOW()
		FROM leave_types lt
		WHERE lt.is_active = TRUE
		ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, employeeID, year)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return 0, employee.ErrEmployeeNotFound
		}
		return 0, fmt.Errorf("failed to initialize leave balances: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// DeductBalance implements leave.BalanceLedger.
func (r *leaveBalanceRepositoryImpl) DeductBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days = used_days + $4,
			updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
		  AND total_days - used_days >= $4
	`

	tag, err := q.Exec(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, fmt.Errorf("failed to deduct leave balance: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// CreditBalance implements leave.BalanceLedger.
func (r *leaveBalanceRepositoryImpl) CreditBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days = GREATEST(0, used_days - $4),
			updated_at = NOW()
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	`

	tag, err := q.Exec(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return fmt.Errorf("failed to credit leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}

	return nil
}

// GetBalances implements leave.BalanceReader.
func (r *leaveBalanceRepositoryImpl) GetBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
			   lb.total_days, lb.used_days, lb.created_at, lb.updated_at,
			   lt.name
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.employee_id = $1 AND lb.year = $2
		ORDER BY lt.name
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		var b leave.LeaveBalance
		if err := rows.Scan(
			&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
			&b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
			&b.LeaveTypeName,
		); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// GetBalance implements leave.BalanceReader.
func (r *leaveBalanceRepositoryImpl) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
			   lb.total_days, lb.used_days, lb.created_at, lb.updated_at,
			   lt.name
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
	`

	var b leave.LeaveBalance
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID, year).Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
		&b.LeaveTypeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}
