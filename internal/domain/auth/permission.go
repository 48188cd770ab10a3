package auth

type Permission string

const (
	// Own records
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveApply   Permission = "leave.apply"
	PermissionLeaveCancel  Permission = "leave.cancel"

	// Team
	PermissionLeaveViewTeam Permission = "leave.view_team"
	PermissionLeaveApprove  Permission = "leave.approve"

	// Administration
	PermissionLeaveViewAll     Permission = "leave.view_all"
	PermissionLeaveManageTypes Permission = "leave.manage_types"
	PermissionBalanceInit      Permission = "leave.balance_init"
	PermissionHolidayManage    Permission = "holiday.manage"
	PermissionAuditView        Permission = "audit.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionLeaveViewOwn,
		PermissionLeaveApply,
		PermissionLeaveCancel,
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
		PermissionLeaveViewAll,
		PermissionLeaveManageTypes,
		PermissionBalanceInit,
		PermissionHolidayManage,
		PermissionAuditView,
	},
	RoleManager: {
		// Manager acts on direct reports only
		PermissionLeaveViewOwn,
		PermissionLeaveApply,
		PermissionLeaveCancel,
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
	},
	RoleEmployee: {
		PermissionLeaveViewOwn,
		PermissionLeaveApply,
		PermissionLeaveCancel,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Can reports whether the actor's role grants permission.
func (a Actor) Can(permission Permission) bool {
	return HasPermission(a.Role, permission)
}
