package user

type Permission string

const (
	// Late requests
	PermissionLateRequestSubmit  Permission = "late_request.submit"
	PermissionLateRequestViewAll Permission = "late_request.view_all"
	PermissionLateRequestReview  Permission = "late_request.review"

	// Attendance
	PermissionAttendanceViewOwn   Permission = "attendance.view_own"
	PermissionAttendanceViewAll   Permission = "attendance.view_all"
	PermissionAttendanceWrite     Permission = "attendance.write"
	PermissionAttendanceRecompute Permission = "attendance.recompute"
	PermissionAttendanceExport    Permission = "attendance.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionLateRequestSubmit,
		PermissionLateRequestViewAll,
		PermissionLateRequestReview,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceWrite,
		PermissionAttendanceRecompute,
		PermissionAttendanceExport,
	},
	RoleHR: {
		PermissionLateRequestSubmit,
		PermissionLateRequestViewAll,
		PermissionLateRequestReview,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceRecompute,
		PermissionAttendanceExport,
	},
	RoleEmployee: {
		PermissionLateRequestSubmit,
		PermissionAttendanceViewOwn,
	},
	RoleImporter: {
		// Importer only writes raw punches
		PermissionAttendanceWrite,
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
