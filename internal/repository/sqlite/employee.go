package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/google/uuid"
)

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) employee.Repository {
	return &employeeRepository{db: db}
}

// Create implements employee.Repository.
func (r *employeeRepository) Create(ctx context.Context, e *employee.Employee) error {
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

	_, err := q.ExecContext(ctx, `
		INSERT INTO employees (id, employee_code, full_name, email, manager_id, employment_status, hire_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.EmployeeCode, e.FullName, e.Email, e.ManagerID, string(e.EmploymentStatus), formatDate(e.HireDate), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return employee.ErrEmployeeCodeExists
		case isForeignKeyViolation(err):
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// GetByID implements employee.Repository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	var (
		e        employee.Employee
		status   string
		hireDate string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, employee_code, full_name, email, manager_id, employment_status, hire_date, created_at, updated_at
		FROM employees
		WHERE id = ?
	`, id).Scan(&e.ID, &e.EmployeeCode, &e.FullName, &e.Email, &e.ManagerID, &status, &hireDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	e.EmploymentStatus = employee.EmploymentStatus(status)
	if e.HireDate, err = parseDate(hireDate); err != nil {
		return employee.Employee{}, fmt.Errorf("invalid hire_date %q: %w", hireDate, err)
	}

	return e, nil
}

// GetManagerID implements employee.Repository.
func (r *employeeRepository) GetManagerID(ctx context.Context, employeeID string) (string, bool, error) {
	q := GetQuerier(ctx, r.db)

	var managerID sql.NullString
	err := q.QueryRowContext(ctx, `SELECT manager_id FROM employees WHERE id = ?`, employeeID).Scan(&managerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, employee.ErrEmployeeNotFound
		}
		return "", false, fmt.Errorf("failed to get manager: %w", err)
	}

	return managerID.String, managerID.Valid, nil
}
