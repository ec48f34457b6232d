package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

// GetActiveBinding implements device.Repository.
func (r *deviceRepository) GetActiveBinding(ctx context.Context, deviceID string) (*device.Binding, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, device_id, user_id, last_seen_at, ip_address, user_agent,
			   is_active, created_at, updated_at
		FROM device_user_bindings
		WHERE device_id = $1 AND is_active = true
		LIMIT 1
	`

	var b device.Binding
	err := q.QueryRow(ctx, query, deviceID).Scan(
		&b.ID, &b.DeviceID, &b.UserID, &b.LastSeenAt, &b.IPAddress, &b.UserAgent,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device binding: %w", err)
	}

	return &b, nil
}

// CreateBinding implements device.Repository.
func (r *deviceRepository) CreateBinding(ctx context.Context, binding device.Binding) (device.Binding, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO device_user_bindings (device_id, user_id, last_seen_at, ip_address, user_agent, is_active)
		VALUES ($1, $2, NOW(), $3, $4, $5)
		RETURNING id, last_seen_at, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		binding.DeviceID, binding.UserID, binding.IPAddress, binding.UserAgent, binding.IsActive,
	).Scan(&binding.ID, &binding.LastSeenAt, &binding.CreatedAt, &binding.UpdatedAt)
	if err != nil {
		return device.Binding{}, fmt.Errorf("failed to create device binding: %w", err)
	}

	return binding, nil
}

// RefreshBinding implements device.Repository.
func (r *deviceRepository) RefreshBinding(ctx context.Context, id string, ipAddress, userAgent *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE device_user_bindings SET
			last_seen_at = NOW(),
			ip_address = COALESCE($2, ip_address),
			user_agent = COALESCE($3, user_agent),
			updated_at = NOW()
		WHERE id = $1
	`

	if _, err := q.Exec(ctx, query, id, ipAddress, userAgent); err != nil {
		return fmt.Errorf("failed to refresh device binding: %w", err)
	}

	return nil
}

// CountActiveBindingsForUser implements device.Repository.
func (r *deviceRepository) CountActiveBindingsForUser(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM device_user_bindings WHERE user_id = $1 AND is_active = true`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count device bindings: %w", err)
	}

	return count, nil
}

// CreateViolation implements device.Repository.
func (r *deviceRepository) CreateViolation(ctx context.Context, violation device.SecurityViolation) (device.SecurityViolation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO device_security_violations (device_id, attempted_user_id, bound_user_id, violation_type, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		violation.DeviceID, violation.AttemptedUserID, violation.BoundUserID,
		violation.ViolationType, violation.IPAddress,
	).Scan(&violation.ID, &violation.CreatedAt)
	if err != nil {
		return device.SecurityViolation{}, fmt.Errorf("failed to create device violation: %w", err)
	}

	return violation, nil
}

func NewDeviceRepository(db *database.DB) device.Repository {
	return &deviceRepository{db: db}
}
