package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveBalanceRepository struct {
	db *sql.DB
}

func NewLeaveBalanceRepository(db *sql.DB) leave.BalanceLedger {
	return &leaveBalanceRepository{db: db}
}

// InitializeBalances implements leave.BalanceLedger.
func (r *leaveBalanceRepository) InitializeBalances(ctx context.Context, employeeID string, year int) (int, error) {
	created := 0
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		rows, err := q.QueryContext(ctx, `SELECT id, max_days_per_year FROM leave_types WHERE is_active = 1`)
		if err != nil {
			return fmt.Errorf("failed to list active leave types: %w", err)
		}
		type allotment struct {
			leaveTypeID string
			days        int
		}
		var allotments []allotment
		for rows.Next() {
			var a allotment
			if err := rows.Scan(&a.leaveTypeID, &a.days); err != nil {
				rows.Close()
				return err
			}
			allotments = append(allotments, a)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, a := range allotments {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			res, err := q.ExecContext(ctx, `
				INSERT INTO leave_balances (id, employee_id, leave_type_id, year, total_days, used_days, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, 0, ?, ?)
				ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
			`, id.String(), employeeID, a.leaveTypeID, year, a.days, now, now)
			if err != nil {
				if isForeignKeyViolation(err) {
					return employee.ErrEmployeeNotFound
				}
				return fmt.Errorf("failed to initialize leave balance: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			created += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// DeductBalance implements leave.BalanceLedger.
func (r *leaveBalanceRepository) DeductBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_balances
		SET used_days = used_days + ?1,
			updated_at = ?5
		WHERE employee_id = ?2 AND leave_type_id = ?3 AND year = ?4
		  AND total_days - used_days >= ?1
	`, days, employeeID, leaveTypeID, year, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to deduct leave balance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CreditBalance implements leave.BalanceLedger.
func (r *leaveBalanceRepository) CreditBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_balances
		SET used_days = MAX(0, used_days - ?1),
			updated_at = ?5
		WHERE employee_id = ?2 AND leave_type_id = ?3 AND year = ?4
	`, days, employeeID, leaveTypeID, year, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to credit leave balance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

const balanceSelect = `
	SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year,
		   lb.total_days, lb.used_days, lb.created_at, lb.updated_at,
		   lt.name
	FROM leave_balances lb
	JOIN leave_types lt ON lb.leave_type_id = lt.id
`

// GetBalances implements leave.BalanceReader.
func (r *leaveBalanceRepository) GetBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, balanceSelect+` WHERE lb.employee_id = ? AND lb.year = ? ORDER BY lt.name`, employeeID, year)
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
func (r *leaveBalanceRepository) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	var b leave.LeaveBalance
	err := q.QueryRowContext(ctx,
		balanceSelect+` WHERE lb.employee_id = ? AND lb.leave_type_id = ? AND lb.year = ?`,
		employeeID, leaveTypeID, year,
	).Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt,
		&b.LeaveTypeName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}
