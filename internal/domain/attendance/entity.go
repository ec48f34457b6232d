package attendance

import (
	"time"
)

// Check-in entry paths
const (
	MethodProximity            = "proximity"
	MethodQR                   = "qr"
	MethodOffPremisesConfirmed = "offpremises_confirmed"
)

// Check-out exit paths
const (
	MethodCheckOutProximity = "proximity"
	MethodCheckOutQR        = "qr"
	MethodCheckOutEmergency = "emergency"
)

// Session states for a (user, day) pair
const (
	StateNoSession  = "no_session"
	StateCheckedIn  = "checked_in"
	StateCheckedOut = "checked_out"
)

// Record is one check-in event. A user has at most one open record
// (check-out null) per calendar day; a partial unique index enforces it.
type Record struct {
	ID     string
	UserID string
	Date   time.Time

	CheckIn               time.Time
	CheckInLocationID     *string
	CheckInMethod         string
	CheckInLatitude       *float64
	CheckInLongitude      *float64
	CheckInDistanceMeters *int
	GPSVerified           bool

	CheckOut               *time.Time
	CheckOutLocationID     *string
	CheckOutMethod         *string
	CheckOutLatitude       *float64
	CheckOutLongitude      *float64
	CheckOutDistanceMeters *int

	// WorkHours is check-out minus check-in in hours, two decimals.
	WorkHours *float64

	OffPremises       bool
	AutoCheckout      bool
	EmergencyCheckout bool
	EmergencyReason   *string

	LateReason          *string
	EarlyCheckoutReason *string
	Notes               *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName             *string
	CheckInLocationName  *string
	CheckOutLocationName *string
}

// State reports the record's position in the per-day lifecycle.
func (r *Record) State() string {
	if r.CheckOut != nil {
		return StateCheckedOut
	}
	return StateCheckedIn
}

// IsOpen reports whether the session has not been checked out yet.
func (r *Record) IsOpen() bool {
	return r.CheckOut == nil
}
