package location

import "time"

// GeofenceLocation is a named circular boundary staff may attend from.
// Owned by configuration management; read-only to the attendance core.
type GeofenceLocation struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	IsActive     bool

	// RequiresEarlyCheckoutReason opts the location into early-checkout
	// justification collection.
	RequiresEarlyCheckoutReason bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeviceClass identifies the kind of device a request originates from.
type DeviceClass string

const (
	DeviceClassMobile  DeviceClass = "mobile"
	DeviceClassTablet  DeviceClass = "tablet"
	DeviceClassLaptop  DeviceClass = "laptop"
	DeviceClassDesktop DeviceClass = "desktop"
)

// DeviceRadiusSetting overrides the allowed radius per device class.
// An active setting takes precedence over the location's own radius.
type DeviceRadiusSetting struct {
	ID                   string
	DeviceClass          DeviceClass
	CheckInRadiusMeters  float64
	CheckOutRadiusMeters float64
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
