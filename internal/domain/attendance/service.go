package attendance

import (
	"context"
	"time"
)

// Service defines business logic for attendance session transitions
type Service interface {
	// CheckIn processes a proximity or QR check-in with full validation
	CheckIn(ctx context.Context, req CheckInRequest) (RecordResponse, error)

	// CheckOut processes a direct or QR check-out
	CheckOut(ctx context.Context, req CheckOutRequest) (RecordResponse, error)

	// EmergencyCheckOut processes an early checkout inside the 30-minute
	// emergency window
	EmergencyCheckOut(ctx context.Context, req EmergencyCheckOutRequest) (RecordResponse, error)

	// CreateConfirmedOffPremises records a check-in credited at the anchor
	// timestamp for an approved off-premises request
	CreateConfirmedOffPremises(ctx context.Context, userID string, anchor CheckInAnchor) (RecordResponse, error)

	// GetMyAttendance retrieves records for the authenticated user
	GetMyAttendance(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// ListAttendance retrieves records with filters (manager roles)
	ListAttendance(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// SweepMissedCheckouts auto-closes open sessions from previous days
	SweepMissedCheckouts(ctx context.Context) (int, error)
}

// CheckInAnchor carries the off-premises approval payload: the check-in is
// credited at the original request's submission time, not the approval time.
type CheckInAnchor struct {
	Timestamp    time.Time
	LocationName string
	Latitude     *float64
	Longitude    *float64
}
