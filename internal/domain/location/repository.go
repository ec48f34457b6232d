package location

import "context"

// LocationRepository reads geofence locations. Location management is an
// external configuration concern; the core only reads.
type LocationRepository interface {
	// GetByID retrieves one location
	GetByID(ctx context.Context, id string) (GeofenceLocation, error)

	// ListActive retrieves every active location
	ListActive(ctx context.Context) ([]GeofenceLocation, error)

	// ListActiveByIDs retrieves the active subset of the given ids,
	// used to scope validation to a user's assigned locations.
	ListActiveByIDs(ctx context.Context, ids []string) ([]GeofenceLocation, error)
}

// DeviceRadiusRepository reads per-device-class radius overrides.
type DeviceRadiusRepository interface {
	// GetActiveByClass returns the active override for a device class,
	// or nil when none is configured.
	GetActiveByClass(ctx context.Context, class DeviceClass) (*DeviceRadiusSetting, error)
}
