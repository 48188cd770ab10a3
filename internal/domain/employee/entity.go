package employee

import "time"

type EmploymentStatus string

const (
	StatusActive   EmploymentStatus = "active"
	StatusInactive EmploymentStatus = "inactive"
)

// Employee is the slice of the employee record the leave ledger reads.
// Records are owned by the employee directory; this service does not edit them.
type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	Email            string
	ManagerID        *string
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == StatusActive
}

// ReportsTo reports whether managerID is the employee's direct manager.
func (e Employee) ReportsTo(managerID string) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}
