package device

import "time"

// Binding associates a physical device identifier with the one user
// authorized to use it for attendance.
type Binding struct {
	ID         string
	DeviceID   string
	UserID     string
	LastSeenAt time.Time
	IPAddress  *string
	UserAgent  *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const ViolationTypeDeviceSharing = "device_sharing"

// SecurityViolation records an attempt to use a device bound to someone
// else. Non-fatal to login; the binding update is blocked.
type SecurityViolation struct {
	ID              string
	DeviceID        string
	AttemptedUserID string
	BoundUserID     string
	ViolationType   string
	IPAddress       *string
	CreatedAt       time.Time
}

// Outcome is the explicit failure-policy variant of a binding check.
// Infrastructure faults fail open: device verification is defense in
// depth, never a primary gate.
type Outcome string

const (
	OutcomeAllowed  Outcome = "allowed"
	OutcomeDenied   Outcome = "denied"
	OutcomeFailOpen Outcome = "fail_open"
)

// Decision is the result of a binding check.
type Decision struct {
	Outcome   Outcome
	Violation *SecurityViolation

	// BoundUserEmail is the only identity detail disclosed on a conflict.
	BoundUserEmail *string

	// MultipleDevices flags the same user active on other devices.
	// Informational only, never blocking.
	MultipleDevices bool
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome != OutcomeDenied
}
