// Package geofence resolves proximity tolerances and validates a reported
// position against candidate locations.
package geofence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/presensia/attendance-backend-go/internal/pkg/geo"
)

// Position is a coordinate pair in degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// CheckKind selects which radius column of a device-class override applies.
type CheckKind string

const (
	CheckKindIn  CheckKind = "check_in"
	CheckKindOut CheckKind = "check_out"
)

// Result describes the outcome of a proximity check. DistanceMeters is the
// unrounded value used for the tolerance comparison; DisplayDistanceMeters
// is rounded to the nearest meter for responses and audit entries.
type Result struct {
	Nearest               *location.GeofenceLocation
	DistanceMeters        float64
	DisplayDistanceMeters int
	ToleranceMeters       float64
	WithinTolerance       bool

	// GPSAvailable and ProximityVerified are false on the QR path when
	// the client could not supply coordinates. QR possession is treated
	// as a weaker proof of presence, accepted but flagged.
	GPSAvailable      bool
	ProximityVerified bool
}

// Validate finds the nearest candidate to pos and compares the unrounded
// distance against toleranceMeters. Candidates are assumed active.
func Validate(pos Position, candidates []location.GeofenceLocation, toleranceMeters float64) Result {
	result := Result{
		ToleranceMeters: toleranceMeters,
		GPSAvailable:    true,
	}

	for i := range candidates {
		d := geo.HaversineDistance(pos.Latitude, pos.Longitude, candidates[i].Latitude, candidates[i].Longitude)
		if result.Nearest == nil || d < result.DistanceMeters {
			result.Nearest = &candidates[i]
			result.DistanceMeters = d
		}
	}

	if result.Nearest == nil {
		return result
	}

	result.DisplayDistanceMeters = geo.RoundMeters(result.DistanceMeters)
	result.WithinTolerance = result.DistanceMeters <= toleranceMeters
	result.ProximityVerified = result.WithinTolerance
	return result
}

// Unverified is the result for a QR scan without coordinates: accepted,
// pinned to the scanned location, flagged as unverified.
func Unverified(loc *location.GeofenceLocation) Result {
	return Result{
		Nearest:           loc,
		GPSAvailable:      false,
		ProximityVerified: false,
		WithinTolerance:   true,
	}
}

// Validator resolves the effective tolerance for a request and runs the
// proximity check against it.
type Validator struct {
	radiusRepo          location.DeviceRadiusRepository
	defaultRadiusMeters float64
	logger              *slog.Logger
}

func NewValidator(radiusRepo location.DeviceRadiusRepository, defaultRadiusMeters float64, logger *slog.Logger) *Validator {
	return &Validator{
		radiusRepo:          radiusRepo,
		defaultRadiusMeters: defaultRadiusMeters,
		logger:              logger,
	}
}

// ResolveTolerance returns the effective allowed radius for loc:
// active device-class override > location radius > global default.
func (v *Validator) ResolveTolerance(ctx context.Context, class location.DeviceClass, loc *location.GeofenceLocation, kind CheckKind) (float64, error) {
	if class != "" {
		setting, err := v.radiusRepo.GetActiveByClass(ctx, class)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve device-class radius: %w", err)
		}
		if setting != nil {
			if kind == CheckKindOut && setting.CheckOutRadiusMeters > 0 {
				return setting.CheckOutRadiusMeters, nil
			}
			if kind == CheckKindIn && setting.CheckInRadiusMeters > 0 {
				return setting.CheckInRadiusMeters, nil
			}
		}
	}

	if loc != nil && loc.RadiusMeters > 0 {
		return loc.RadiusMeters, nil
	}

	return v.defaultRadiusMeters, nil
}

// ValidatePosition resolves the tolerance for the caller's device class and
// checks pos against the candidate set.
func (v *Validator) ValidatePosition(ctx context.Context, pos Position, candidates []location.GeofenceLocation, class location.DeviceClass, kind CheckKind) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, location.ErrNoActiveLocations
	}

	// Resolve against the first candidate's radius; the nearest location's
	// own radius is applied after the nearest is known.
	tolerance, err := v.ResolveTolerance(ctx, class, &candidates[0], kind)
	if err != nil {
		return Result{}, err
	}

	result := Validate(pos, candidates, tolerance)

	// Re-resolve when the nearest candidate carries a different radius and
	// no device-class override decided the tolerance.
	if result.Nearest != nil && result.Nearest.ID != candidates[0].ID {
		tolerance, err = v.ResolveTolerance(ctx, class, result.Nearest, kind)
		if err != nil {
			return Result{}, err
		}
		if tolerance != result.ToleranceMeters {
			result = Validate(pos, candidates, tolerance)
		}
	}

	return result, nil
}

// AcceptUnverified logs and returns the unverified QR result.
func (v *Validator) AcceptUnverified(userID string, loc *location.GeofenceLocation) Result {
	v.logger.Info("accepting QR scan without coordinates",
		"user_id", userID,
		"location_id", loc.ID,
		"gps_available", false,
		"proximity_verified", false,
	)
	return Unverified(loc)
}
