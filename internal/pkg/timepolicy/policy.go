// Package timepolicy decides whether attendance actions are permitted at a
// given moment for a given department and role. All predicates are pure;
// callers supply the clock.
package timepolicy

import (
	"strings"
	"time"

	"github.com/presensia/attendance-backend-go/internal/domain/user"
)

const (
	// CheckInCutoffHour is the weekday local hour after which non-exempt
	// staff can no longer check in.
	CheckInCutoffHour = 15

	// CheckOutCutoffHour is the weekday local hour after which non-exempt
	// staff can no longer check out.
	CheckOutCutoffHour = 18
)

// Department carries the fields the policy matches on.
type Department struct {
	Code string
	Name string
}

// Departments exempt from time-window restrictions, matched
// case-insensitively against code or name.
var exemptDepartments = []string{"security", "transport", "operations"}

// Departments whose staff never need a lateness reason.
var latenessExemptDepartments = []string{"security", "research"}

func isWeekend(now time.Time) bool {
	wd := now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func matchesDepartment(dept Department, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(dept.Code, n) || strings.EqualFold(dept.Name, n) {
			return true
		}
	}
	return false
}

func isExemptRole(role user.Role) bool {
	return role == user.RoleAdmin || role == user.RoleDepartmentHead || role == user.RoleRegionalManager
}

// CanCheckIn reports whether a check-in is permitted at now. Weekends carry
// no restrictions; exempt departments and roles bypass the weekday cutoff.
func CanCheckIn(now time.Time, dept Department, role user.Role) bool {
	if isWeekend(now) {
		return true
	}
	if isExemptRole(role) || matchesDepartment(dept, exemptDepartments) {
		return true
	}
	return now.Hour() < CheckInCutoffHour
}

// CanCheckOut reports whether a check-out is permitted at now.
func CanCheckOut(now time.Time, dept Department, role user.Role) bool {
	if isWeekend(now) {
		return true
	}
	if isExemptRole(role) || matchesDepartment(dept, exemptDepartments) {
		return true
	}
	return now.Hour() < CheckOutCutoffHour
}

// RequiresLatenessReason reports whether a lateness justification must be
// collected. Advisory only: the caller records the reason, it never blocks
// the check-in.
func RequiresLatenessReason(now time.Time, dept Department, role user.Role) bool {
	if isWeekend(now) {
		return false
	}
	if role == user.RoleDepartmentHead || role == user.RoleRegionalManager {
		return false
	}
	return !matchesDepartment(dept, latenessExemptDepartments)
}

// RequiresEarlyCheckoutReason reports whether an early-checkout
// justification must be collected. Only locations that opt in via their
// flag trigger it. Advisory only, like the lateness predicate.
func RequiresEarlyCheckoutReason(now time.Time, locationRequiresFlag bool, role user.Role) bool {
	if !locationRequiresFlag {
		return false
	}
	if isWeekend(now) {
		return false
	}
	return role != user.RoleDepartmentHead && role != user.RoleRegionalManager
}

// CheckInCutoff returns the cutoff instant for now's date, surfaced to the
// caller on a policy rejection.
func CheckInCutoff(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), CheckInCutoffHour, 0, 0, 0, now.Location())
}

// CheckOutCutoff returns the check-out cutoff instant for now's date.
func CheckOutCutoff(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), CheckOutCutoffHour, 0, 0, 0, now.Location())
}
