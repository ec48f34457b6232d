package offpremises

import (
	"context"
	"time"
)

// Repository defines data access for pending off-premises check-ins.
type Repository interface {
	// Create inserts a pending request
	Create(ctx context.Context, req PendingCheckin) (PendingCheckin, error)

	// GetByID retrieves a request with requester join data
	GetByID(ctx context.Context, id string) (PendingCheckin, error)

	// Decide transitions a request out of pending. The update is
	// conditional on status still being pending; ok=false means another
	// approver decided first.
	Decide(ctx context.Context, id, status, approverID string, comments *string, decidedAt time.Time) (ok bool, err error)

	// ListPendingForUsers returns pending requests submitted by any of
	// the given users' reports (used for the approver inbox).
	ListPendingForApprover(ctx context.Context, approver ApproverScope) ([]PendingCheckin, error)
}

// ApproverScope narrows the pending inbox to what the approver may decide.
type ApproverScope struct {
	// All is set for admins.
	All bool

	// DepartmentID limits to one department (department heads).
	DepartmentID *string

	// LocationIDs limits to requesters sharing a location (regional managers).
	LocationIDs []string
}
