// Package leave exposes the read-only approved-leave lookup the attendance
// core needs. Leave-request management itself is an external collaborator.
package leave

import (
	"context"
	"time"
)

type Repository interface {
	// IsOnApprovedLeave reports whether the user has approved leave
	// covering the given date.
	IsOnApprovedLeave(ctx context.Context, userID string, date time.Time) (bool, error)
}
