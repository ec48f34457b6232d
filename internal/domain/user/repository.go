package user

import "context"

// ProfileRepository reads staff profiles from the external identity store.
// The attendance core never mutates profiles.
type ProfileRepository interface {
	// GetByID retrieves a profile with department and location assignments
	GetByID(ctx context.Context, id string) (Profile, error)

	// ListApproversByDepartment returns all department_head and
	// regional_manager profiles attached to the given department.
	ListApproversByDepartment(ctx context.Context, departmentID string) ([]Profile, error)

	// GetDepartmentHead returns the head of the user's department, used for
	// best-effort security notifications.
	GetDepartmentHead(ctx context.Context, userID string) (Profile, error)
}
