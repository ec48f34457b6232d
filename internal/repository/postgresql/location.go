package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
)

type locationRepository struct {
	db *database.DB
}

const locationColumns = `
	id, name, address, latitude, longitude, radius_meters,
	requires_early_checkout_reason, is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (location.GeofenceLocation, error) {
	var l location.GeofenceLocation
	err := row.Scan(
		&l.ID, &l.Name, &l.Address, &l.Latitude, &l.Longitude, &l.RadiusMeters,
		&l.RequiresEarlyCheckoutReason, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// GetByID implements location.LocationRepository.
func (r *locationRepository) GetByID(ctx context.Context, id string) (location.GeofenceLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + locationColumns + ` FROM geofence_locations WHERE id = $1`

	loc, err := scanLocation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.GeofenceLocation{}, location.ErrLocationNotFound
		}
		return location.GeofenceLocation{}, fmt.Errorf("failed to get location: %w", err)
	}

	return loc, nil
}

// ListActive implements location.LocationRepository.
func (r *locationRepository) ListActive(ctx context.Context) ([]location.GeofenceLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + locationColumns + ` FROM geofence_locations WHERE is_active = true ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active locations: %w", err)
	}
	defer rows.Close()

	return collectLocations(rows)
}

// ListActiveByIDs implements location.LocationRepository.
func (r *locationRepository) ListActiveByIDs(ctx context.Context, ids []string) ([]location.GeofenceLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + locationColumns + ` FROM geofence_locations WHERE is_active = true AND id = ANY($1) ORDER BY name`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations by ids: %w", err)
	}
	defer rows.Close()

	return collectLocations(rows)
}

func collectLocations(rows pgx.Rows) ([]location.GeofenceLocation, error) {
	var locations []location.GeofenceLocation
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepository{db: db}
}

type deviceRadiusRepository struct {
	db *database.DB
}

// GetActiveByClass implements location.DeviceRadiusRepository.
func (r *deviceRadiusRepository) GetActiveByClass(ctx context.Context, class location.DeviceClass) (*location.DeviceRadiusSetting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, device_class, check_in_radius_meters, check_out_radius_meters,
			   is_active, created_at, updated_at
		FROM device_radius_settings
		WHERE device_class = $1 AND is_active = true
		LIMIT 1
	`

	var s location.DeviceRadiusSetting
	err := q.QueryRow(ctx, query, class).Scan(
		&s.ID, &s.DeviceClass, &s.CheckInRadiusMeters, &s.CheckOutRadiusMeters,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device radius setting: %w", err)
	}

	return &s, nil
}

func NewDeviceRadiusRepository(db *database.DB) location.DeviceRadiusRepository {
	return &deviceRadiusRepository{db: db}
}
