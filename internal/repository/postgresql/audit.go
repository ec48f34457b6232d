package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

// Create implements audit.Repository.
func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO attendance_audit_logs (user_id, record_id, action, from_state, to_state, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := q.Exec(ctx, query,
		entry.UserID, entry.RecordID, entry.Action, entry.FromState, entry.ToState, details,
	); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	return nil
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}
