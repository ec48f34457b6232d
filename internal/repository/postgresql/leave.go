package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/presensia/attendance-backend-go/internal/domain/leave"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

// IsOnApprovedLeave implements leave.Repository.
func (r *leaveRepository) IsOnApprovedLeave(ctx context.Context, userID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE user_id = $1
			  AND status = 'approved'
			  AND $2 BETWEEN start_date AND end_date
		)
	`

	var onLeave bool
	if err := q.QueryRow(ctx, query, userID, date).Scan(&onLeave); err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}

	return onLeave, nil
}

func NewLeaveRepository(db *database.DB) leave.Repository {
	return &leaveRepository{db: db}
}
