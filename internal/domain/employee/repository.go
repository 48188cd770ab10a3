package employee

import "context"

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetManagerID returns the direct manager of employeeID; ok is false when
	// the employee has none.
	GetManagerID(ctx context.Context, employeeID string) (managerID string, ok bool, err error)
}
