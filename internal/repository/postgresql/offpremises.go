package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type offPremisesRepository struct {
	db *database.DB
}

const pendingCheckinColumns = `
	p.id, p.user_id, p.location_name, p.latitude, p.longitude, p.accuracy_meters,
	p.reason, p.device_id, p.device_class, p.status,
	p.approver_id, p.decided_at, p.comments, p.created_at, p.updated_at,
	u.full_name AS user_name, d.name AS department_name`

func scanPendingCheckin(row pgx.Row) (offpremises.PendingCheckin, error) {
	var p offpremises.PendingCheckin
	err := row.Scan(
		&p.ID, &p.UserID, &p.LocationName, &p.Latitude, &p.Longitude, &p.AccuracyMeters,
		&p.Reason, &p.DeviceID, &p.DeviceClass, &p.Status,
		&p.ApproverID, &p.DecidedAt, &p.Comments, &p.CreatedAt, &p.UpdatedAt,
		&p.UserName, &p.DepartmentName,
	)
	return p, err
}

// Create implements offpremises.Repository.
func (r *offPremisesRepository) Create(ctx context.Context, req offpremises.PendingCheckin) (offpremises.PendingCheckin, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pending_offpremises_checkins (
			user_id, location_name, latitude, longitude, accuracy_meters,
			reason, device_id, device_class, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.UserID, req.LocationName, req.Latitude, req.Longitude, req.AccuracyMeters,
		req.Reason, req.DeviceID, req.DeviceClass, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return offpremises.PendingCheckin{}, fmt.Errorf("failed to create off-premises request: %w", err)
	}

	return req, nil
}

// GetByID implements offpremises.Repository.
func (r *offPremisesRepository) GetByID(ctx context.Context, id string) (offpremises.PendingCheckin, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + pendingCheckinColumns + `
		FROM pending_offpremises_checkins p
		LEFT JOIN users u ON u.id = p.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE p.id = $1`

	req, err := scanPendingCheckin(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return offpremises.PendingCheckin{}, offpremises.ErrRequestNotFound
		}
		return offpremises.PendingCheckin{}, fmt.Errorf("failed to get off-premises request: %w", err)
	}

	return req, nil
}

// Decide implements offpremises.Repository. Conditional on the request
// still being pending, so concurrent approvers resolve to one winner.
func (r *offPremisesRepository) Decide(ctx context.Context, id, status, approverID string, comments *string, decidedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pending_offpremises_checkins SET
			status = $2,
			approver_id = $3,
			comments = $4,
			decided_at = $5,
			updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`

	tag, err := q.Exec(ctx, query, id, status, approverID, comments, decidedAt)
	if err != nil {
		return false, fmt.Errorf("failed to decide off-premises request: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListPendingForApprover implements offpremises.Repository.
func (r *offPremisesRepository) ListPendingForApprover(ctx context.Context, scope offpremises.ApproverScope) ([]offpremises.PendingCheckin, error) {
	q := GetQuerier(ctx, r.db)

	where := "p.status = 'pending'"
	var args []interface{}

	switch {
	case scope.All:
		// No narrowing.
	case scope.DepartmentID != nil:
		where += " AND u.department_id = $1"
		args = append(args, *scope.DepartmentID)
	case len(scope.LocationIDs) > 0:
		where += ` AND EXISTS (
			SELECT 1 FROM user_locations ul
			WHERE ul.user_id = p.user_id AND ul.location_id = ANY($1)
		)`
		args = append(args, scope.LocationIDs)
	default:
		return nil, nil
	}

	query := `SELECT ` + pendingCheckinColumns + `
		FROM pending_offpremises_checkins p
		LEFT JOIN users u ON u.id = p.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE ` + where + `
		ORDER BY p.created_at ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var pending []offpremises.PendingCheckin
	for rows.Next() {
		req, err := scanPendingCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		pending = append(pending, req)
	}

	return pending, rows.Err()
}

func NewOffPremisesRepository(db *database.DB) offpremises.Repository {
	return &offPremisesRepository{db: db}
}
