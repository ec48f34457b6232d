package timepolicy

import (
	"testing"
	"time"

	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

var (
	engineering = Department{Code: "ENG", Name: "Engineering"}
	security    = Department{Code: "SEC", Name: "Security"}
	research    = Department{Code: "RND", Name: "Research"}
)

// 2024-06-10 is a Monday, 2024-06-11 a Tuesday, 2024-06-15 a Saturday.
func at(day string, hour int) time.Time {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local)
}

func TestCanCheckIn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		now  time.Time
		dept Department
		role user.Role
		want bool
	}{
		{"weekday before cutoff", at("2024-06-10", 8), engineering, user.RoleStaff, true},
		{"weekday at cutoff", at("2024-06-10", 15), engineering, user.RoleStaff, false},
		{"weekday late evening", at("2024-06-11", 23), engineering, user.RoleStaff, false},
		{"weekend late evening", at("2024-06-15", 23), engineering, user.RoleStaff, true},
		{"exempt department after cutoff", at("2024-06-10", 16), security, user.RoleStaff, true},
		{"exempt department matched by name", at("2024-06-10", 16), Department{Code: "X1", Name: "transport"}, user.RoleStaff, true},
		{"exempt role after cutoff", at("2024-06-10", 16), engineering, user.RoleDepartmentHead, true},
		{"admin after cutoff", at("2024-06-10", 22), engineering, user.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCheckIn(tt.now, tt.dept, tt.role))
		})
	}
}

func TestCanCheckOut(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		now  time.Time
		dept Department
		role user.Role
		want bool
	}{
		{"weekday before cutoff", at("2024-06-10", 17), engineering, user.RoleStaff, true},
		{"weekday at cutoff", at("2024-06-10", 18), engineering, user.RoleStaff, false},
		{"weekend after cutoff", at("2024-06-15", 20), engineering, user.RoleStaff, true},
		{"exempt department after cutoff", at("2024-06-10", 20), security, user.RoleStaff, true},
		{"regional manager after cutoff", at("2024-06-10", 21), engineering, user.RoleRegionalManager, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCheckOut(tt.now, tt.dept, tt.role))
		})
	}
}

func TestRequiresLatenessReason(t *testing.T) {
	t.Parallel()
	// Weekday staff in a regular department must justify lateness.
	assert.True(t, RequiresLatenessReason(at("2024-06-10", 10), engineering, user.RoleStaff))
	// Admins are not excluded from the lateness predicate.
	assert.True(t, RequiresLatenessReason(at("2024-06-10", 10), engineering, user.RoleAdmin))

	// Weekend: never.
	assert.False(t, RequiresLatenessReason(at("2024-06-15", 10), engineering, user.RoleStaff))
	// Security and research departments are excluded.
	assert.False(t, RequiresLatenessReason(at("2024-06-10", 10), security, user.RoleStaff))
	assert.False(t, RequiresLatenessReason(at("2024-06-10", 10), research, user.RoleStaff))
	// Lead roles are excluded.
	assert.False(t, RequiresLatenessReason(at("2024-06-10", 10), engineering, user.RoleDepartmentHead))
	assert.False(t, RequiresLatenessReason(at("2024-06-10", 10), engineering, user.RoleRegionalManager))
}

func TestRequiresEarlyCheckoutReason(t *testing.T) {
	t.Parallel()
	// Only triggers when the location opts in.
	assert.False(t, RequiresEarlyCheckoutReason(at("2024-06-10", 14), false, user.RoleStaff))
	assert.True(t, RequiresEarlyCheckoutReason(at("2024-06-10", 14), true, user.RoleStaff))
	// Skipped on weekends and for lead roles.
	assert.False(t, RequiresEarlyCheckoutReason(at("2024-06-15", 14), true, user.RoleStaff))
	assert.False(t, RequiresEarlyCheckoutReason(at("2024-06-10", 14), true, user.RoleDepartmentHead))
	assert.False(t, RequiresEarlyCheckoutReason(at("2024-06-10", 14), true, user.RoleRegionalManager))
}

func TestCutoffs(t *testing.T) {
	t.Parallel()
	now := at("2024-06-10", 16)
	assert.Equal(t, 15, CheckInCutoff(now).Hour())
	assert.Equal(t, 18, CheckOutCutoff(now).Hour())
	assert.Equal(t, now.Day(), CheckInCutoff(now).Day())
}
