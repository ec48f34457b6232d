package device

import "context"

// Repository defines data access for device bindings and violations.
type Repository interface {
	// GetActiveBinding returns the active binding for a device, or nil.
	GetActiveBinding(ctx context.Context, deviceID string) (*Binding, error)

	// CreateBinding binds a device to a user
	CreateBinding(ctx context.Context, binding Binding) (Binding, error)

	// RefreshBinding updates last-seen metadata on an existing binding
	RefreshBinding(ctx context.Context, id string, ipAddress, userAgent *string) error

	// CountActiveBindingsForUser counts how many devices a user is
	// currently bound to
	CountActiveBindingsForUser(ctx context.Context, userID string) (int, error)

	// CreateViolation persists a device security violation
	CreateViolation(ctx context.Context, violation SecurityViolation) (SecurityViolation, error)
}

// Service is the device-binding anti-sharing guard.
type Service interface {
	// CheckAndBind enforces at most one active user per device. It never
	// returns an error: infrastructure faults resolve to a fail-open
	// decision by policy.
	CheckAndBind(ctx context.Context, userID string, req CheckBindingRequest) Decision
}
