package geofence

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRadiusRepo struct {
	settings map[location.DeviceClass]*location.DeviceRadiusSetting
	err      error
}

func (f *fakeRadiusRepo) GetActiveByClass(_ context.Context, class location.DeviceClass) (*location.DeviceRadiusSetting, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings[class], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// officeHQ sits at the origin of the test grid. Offsets below are chosen so
// 0.0009 degrees of latitude is roughly 100 meters.
var officeHQ = location.GeofenceLocation{
	ID:           "loc-hq",
	Name:         "Head Office",
	Latitude:     -6.200000,
	Longitude:    106.816666,
	RadiusMeters: 100,
	IsActive:     true,
}

var officeBranch = location.GeofenceLocation{
	ID:           "loc-branch",
	Name:         "Branch Office",
	Latitude:     -6.300000,
	Longitude:    106.900000,
	RadiusMeters: 100,
	IsActive:     true,
}

func positionAtMeters(origin location.GeofenceLocation, meters float64) Position {
	return Position{
		Latitude:  origin.Latitude + meters/111195.0,
		Longitude: origin.Longitude,
	}
}

func TestValidate_NearestAndDistance(t *testing.T) {
	t.Parallel()
	pos := positionAtMeters(officeHQ, 50)

	result := Validate(pos, []location.GeofenceLocation{officeBranch, officeHQ}, 100)

	require.NotNil(t, result.Nearest)
	assert.Equal(t, "loc-hq", result.Nearest.ID)
	assert.InDelta(t, 50, result.DistanceMeters, 1)
	assert.Equal(t, 50, result.DisplayDistanceMeters)
	assert.True(t, result.WithinTolerance)
	assert.True(t, result.ProximityVerified)
	assert.True(t, result.GPSAvailable)
}

func TestValidate_OutsideTolerance(t *testing.T) {
	t.Parallel()
	pos := positionAtMeters(officeHQ, 140)

	result := Validate(pos, []location.GeofenceLocation{officeHQ}, 100)

	assert.False(t, result.WithinTolerance)
	assert.False(t, result.ProximityVerified)
	assert.InDelta(t, 140, result.DistanceMeters, 1)
}

func TestValidate_ComparisonUsesUnroundedDistance(t *testing.T) {
	t.Parallel()
	// 100.4 meters out: displays as 100 but must fail a 100 meter tolerance.
	pos := positionAtMeters(officeHQ, 100.4)

	result := Validate(pos, []location.GeofenceLocation{officeHQ}, 100)

	assert.Equal(t, 100, result.DisplayDistanceMeters)
	assert.False(t, result.WithinTolerance)
}

func TestValidator_DeviceClassOverridePrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Location radius 100m, mobile override 150m.
	repo := &fakeRadiusRepo{settings: map[location.DeviceClass]*location.DeviceRadiusSetting{
		location.DeviceClassMobile: {
			DeviceClass:          location.DeviceClassMobile,
			CheckInRadiusMeters:  150,
			CheckOutRadiusMeters: 150,
			IsActive:             true,
		},
	}}
	v := NewValidator(repo, 100, testLogger())

	pos := positionAtMeters(officeHQ, 140)
	candidates := []location.GeofenceLocation{officeHQ}

	// Mobile at 140m succeeds against the 150m override.
	mobile, err := v.ValidatePosition(ctx, pos, candidates, location.DeviceClassMobile, CheckKindIn)
	require.NoError(t, err)
	assert.True(t, mobile.WithinTolerance)
	assert.Equal(t, float64(150), mobile.ToleranceMeters)

	// Desktop has no override; the location's 100m radius applies and 140m fails.
	desktop, err := v.ValidatePosition(ctx, pos, candidates, location.DeviceClassDesktop, CheckKindIn)
	require.NoError(t, err)
	assert.False(t, desktop.WithinTolerance)
	assert.Equal(t, float64(100), desktop.ToleranceMeters)
}

func TestValidator_FallbackToGlobalDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &fakeRadiusRepo{}
	v := NewValidator(repo, 75, testLogger())

	noRadius := officeHQ
	noRadius.RadiusMeters = 0

	tolerance, err := v.ResolveTolerance(ctx, location.DeviceClassLaptop, &noRadius, CheckKindIn)
	require.NoError(t, err)
	assert.Equal(t, float64(75), tolerance)
}

func TestValidator_NoCandidates(t *testing.T) {
	t.Parallel()
	v := NewValidator(&fakeRadiusRepo{}, 100, testLogger())

	_, err := v.ValidatePosition(context.Background(), Position{}, nil, location.DeviceClassMobile, CheckKindIn)
	assert.ErrorIs(t, err, location.ErrNoActiveLocations)
}

func TestUnverified(t *testing.T) {
	t.Parallel()
	loc := officeHQ
	result := Unverified(&loc)

	assert.False(t, result.GPSAvailable)
	assert.False(t, result.ProximityVerified)
	assert.True(t, result.WithinTolerance)
	assert.Equal(t, "loc-hq", result.Nearest.ID)
}
