package device

import "errors"

var (
	ErrDeviceConflict  = errors.New("device is bound to another user")
	ErrBindingNotFound = errors.New("device binding not found")
)
