package auth

type Role string

const (
	RoleAdmin    Role = "admin"    // HR administrator - full access
	RoleManager  Role = "manager"  // Can approve leave of direct reports
	RoleEmployee Role = "employee" // Regular employee
)

// ParseRole returns the role for s and whether it is known.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return Role(s), true
	default:
		return "", false
	}
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	EmployeeID string
	Role       Role
}

// IsAdmin checks if actor is an HR administrator
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsManager checks if actor is manager or admin
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}
