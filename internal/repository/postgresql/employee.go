package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepositoryImpl{db: db}
}

// Create implements employee.Repository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e *employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate employee id: %w", err)
		}
		e.ID = id.String()
	}
	if e.EmploymentStatus == "" {
		e.EmploymentStatus = employee.StatusActive
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	query := `
		INSERT INTO employees (id, employee_code, full_name, email, manager_id, employment_status, hire_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		e.ID, e.EmployeeCode, e.FullName, e.Email, e.ManagerID, string(e.EmploymentStatus), e.HireDate, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return employee.ErrEmployeeCodeExists
		case pgForeignKeyViolation:
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// GetByID implements employee.Repository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, full_name, email, manager_id, employment_status, hire_date, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var (
		e      employee.Employee
		status string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.EmployeeCode, &e.FullName, &e.Email, &e.ManagerID, &status, &e.HireDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	e.EmploymentStatus = employee.EmploymentStatus(status)

	return e, nil
}

// GetManagerID implements employee.Repository.
func (r *employeeRepositoryImpl) GetManagerID(ctx context.Context, employeeID string) (string, bool, error) {
	q := GetQuerier(ctx, r.db)

	var managerID *string
	err := q.QueryRow(ctx, `SELECT manager_id FROM employees WHERE id = $1`, employeeID).Scan(&managerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, employee.ErrEmployeeNotFound
		}
		return "", false, fmt.Errorf("failed to get manager: %w", err)
	}
	if managerID == nil {
		return "", false, nil
	}

	return *managerID, true, nil
}
