package user

type Role string

const (
	RoleAdmin    Role = "admin"    // System administrator - full access
	RoleHR       Role = "hr"       // Reviews late requests and manages attendance
	RoleEmployee Role = "employee" // Submits own late requests
	RoleImporter Role = "importer" // Biometrics importer service account
)

// Identity is the caller as described by a verified access token.
type Identity struct {
	UserID     string
	EmployeeID *int64
	Role       Role
}

func (i Identity) IsReviewer() bool {
	return i.Role == RoleHR || i.Role == RoleAdmin
}

// OwnsEmployee reports whether the caller is the given employee.
func (i Identity) OwnsEmployee(employeeID int64) bool {
	return i.EmployeeID != nil && *i.EmployeeID == employeeID
}
