package employee

import "time"

// Employee is the read-only view the attendance engine needs. Employee
// master data is maintained elsewhere.
type Employee struct {
	ID           int64
	EmployeeCode string
	FullName     string
	Email        *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
