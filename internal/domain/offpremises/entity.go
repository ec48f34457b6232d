package offpremises

import "time"

// Request statuses; pending is the only non-terminal state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// PendingCheckin is a staff-submitted claim of presence outside their
// assigned geofence, awaiting a manager decision. Mutated exactly once.
type PendingCheckin struct {
	ID             string
	UserID         string
	LocationName   string
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64
	Reason         string
	DeviceID       *string
	DeviceClass    *string
	Status         string
	ApproverID     *string
	DecidedAt      *time.Time
	Comments       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	UserName       *string
	DepartmentName *string
}

// IsDecided reports whether the request reached a terminal state.
func (p *PendingCheckin) IsDecided() bool {
	return p.Status != StatusPending
}
