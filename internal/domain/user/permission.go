package user

type Permission string

const (
	// Attendance
	PermissionAttendanceCheckIn Permission = "attendance.check_in"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Off-premises exception workflow
	PermissionOffPremisesRequest Permission = "offpremises.request"
	PermissionOffPremisesApprove Permission = "offpremises.approve"

	// Device security
	PermissionDeviceViolationsView Permission = "device.violations_view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceCheckIn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionOffPremisesRequest,
		PermissionOffPremisesApprove,
		PermissionDeviceViolationsView,
	},
	RoleRegionalManager: {
		PermissionAttendanceCheckIn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionOffPremisesRequest,
		PermissionOffPremisesApprove,
		PermissionDeviceViolationsView,
	},
	RoleDepartmentHead: {
		PermissionAttendanceCheckIn,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionOffPremisesRequest,
		PermissionOffPremisesApprove,
	},
	RoleStaff: {
		PermissionAttendanceCheckIn,
		PermissionAttendanceViewOwn,
		PermissionOffPremisesRequest,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// CanApproveOffPremises is the single capability check for the exception
// workflow. Admins approve anything; regional managers need at least one
// shared assigned location with the requester; department heads need an
// exact department match. A false result is a hard permission error for
// the caller, not a silent filter.
func CanApproveOffPremises(actor, requester *Profile) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleRegionalManager:
		return actor.SharesLocationWith(requester)
	case RoleDepartmentHead:
		return actor.SameDepartmentAs(requester)
	default:
		return false
	}
}
