package user

import "time"

type Role string

const (
	RoleAdmin           Role = "admin"            // Full access, any scope
	RoleRegionalManager Role = "regional_manager" // Approves within shared locations
	RoleDepartmentHead  Role = "department_head"  // Approves within own department
	RoleStaff           Role = "staff"            // Regular staff member
)

// Profile is the read-only view of a staff member consumed by the
// attendance core. Profile ownership (CRUD) lives with an external
// identity service.
type Profile struct {
	ID             string
	Email          string
	FullName       string
	Role           Role
	DepartmentID   *string
	DepartmentCode *string
	DepartmentName *string
	ManagerID      *string
	LocationIDs    []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAdmin checks if the user has unrestricted scope
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsManager checks if the user holds any approving role
func (p *Profile) IsManager() bool {
	return p.Role == RoleAdmin || p.Role == RoleRegionalManager || p.Role == RoleDepartmentHead
}

// SharesLocationWith reports whether two profiles have at least one
// assigned location in common.
func (p *Profile) SharesLocationWith(other *Profile) bool {
	for _, mine := range p.LocationIDs {
		for _, theirs := range other.LocationIDs {
			if mine == theirs {
				return true
			}
		}
	}
	return false
}

// SameDepartmentAs reports whether two profiles belong to the exact
// same department.
func (p *Profile) SameDepartmentAs(other *Profile) bool {
	if p.DepartmentID == nil || other.DepartmentID == nil {
		return false
	}
	return *p.DepartmentID == *other.DepartmentID
}
