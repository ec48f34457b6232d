package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/domain/leave"
	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/presensia/attendance-backend-go/internal/domain/notification"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
	"github.com/presensia/attendance-backend-go/internal/pkg/timepolicy"
	"github.com/presensia/attendance-backend-go/internal/service/geofence"
)

// emergencyWindow bounds how long after check-in an emergency checkout
// remains available.
const emergencyWindow = 30 * time.Minute

type ServiceImpl struct {
	repo         attendance.Repository
	profileRepo  user.ProfileRepository
	locRepo      location.LocationRepository
	leaveRepo    leave.Repository
	auditRepo    audit.Repository
	geoValidator *geofence.Validator
	deviceGuard  device.Service
	notifier     notification.Service

	// now is swappable in tests
	now func() time.Time
}

func NewAttendanceService(
	repo attendance.Repository,
	profileRepo user.ProfileRepository,
	locRepo location.LocationRepository,
	leaveRepo leave.Repository,
	auditRepo audit.Repository,
	geoValidator *geofence.Validator,
	deviceGuard device.Service,
	notifier notification.Service,
) attendance.Service {
	return &ServiceImpl{
		repo:         repo,
		profileRepo:  profileRepo,
		locRepo:      locRepo,
		leaveRepo:    leaveRepo,
		auditRepo:    auditRepo,
		geoValidator: geoValidator,
		deviceGuard:  deviceGuard,
		notifier:     notifier,
		now:          time.Now,
	}
}

func userIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

func departmentOf(p *user.Profile) timepolicy.Department {
	dept := timepolicy.Department{}
	if p.DepartmentCode != nil {
		dept.Code = *p.DepartmentCode
	}
	if p.DepartmentName != nil {
		dept.Name = *p.DepartmentName
	}
	return dept
}

// startOfDay truncates t to its calendar date in t's own zone.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay is the auto-close boundary for a stale open session.
func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}

// workHoursBetween is checkout minus checkin in hours, two decimals.
// Negative or zero values are stored as-is for downstream data-quality
// signals, never rejected here.
func workHoursBetween(checkIn, checkOut time.Time) float64 {
	h := checkOut.Sub(checkIn).Hours()
	return math.Round(h*100) / 100
}

// postCommit runs best-effort side effects after the primary write
// committed. Failures are logged and never surfaced to the caller.
func (s *ServiceImpl) postCommit(ctx context.Context, hooks []func(context.Context) error) {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			slog.Error("post-commit hook failed", "error", err)
		}
	}
}

func (s *ServiceImpl) auditHook(entry audit.Entry) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.auditRepo.Create(ctx, entry)
	}
}

// guardDevice runs the binding check and converts a denial into the
// domain error. Fail-open decisions pass through.
func (s *ServiceImpl) guardDevice(ctx context.Context, userID string, info attendance.DeviceInfo) (device.Decision, error) {
	decision := s.deviceGuard.CheckAndBind(ctx, userID, device.CheckBindingRequest{
		DeviceID:  info.DeviceID,
		UserAgent: info.UserAgent,
		IPAddress: info.IPAddress,
	})
	if !decision.Allowed() {
		if decision.BoundUserEmail != nil {
			return decision, fmt.Errorf("%w (bound to %s)", device.ErrDeviceConflict, *decision.BoundUserEmail)
		}
		return decision, device.ErrDeviceConflict
	}
	return decision, nil
}

// candidateLocations scopes geofence validation to the user's assigned
// locations, or every active location when nothing is assigned.
func (s *ServiceImpl) candidateLocations(ctx context.Context, profile *user.Profile) ([]location.GeofenceLocation, error) {
	if len(profile.LocationIDs) > 0 {
		return s.locRepo.ListActiveByIDs(ctx, profile.LocationIDs)
	}
	return s.locRepo.ListActive(ctx)
}

// autoClose closes a stale open session at 23:59:59 of its own day.
func (s *ServiceImpl) autoClose(ctx context.Context, record attendance.Record) ([]func(context.Context) error, error) {
	boundary := endOfDay(record.Date)
	record.CheckOut = &boundary
	hours := workHoursBetween(record.CheckIn, boundary)
	record.WorkHours = &hours
	record.AutoCheckout = true

	ok, err := s.repo.CloseSession(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-close stale session: %w", err)
	}
	if !ok {
		// Another writer closed it first; nothing left to do.
		return nil, nil
	}

	recordID := record.ID
	hooks := []func(context.Context) error{
		s.auditHook(audit.Entry{
			UserID:    record.UserID,
			RecordID:  &recordID,
			Action:    audit.ActionAutoCheckout,
			FromState: attendance.StateCheckedIn,
			ToState:   attendance.StateCheckedOut,
			Details: map[string]interface{}{
				"closed_at":  boundary.Format(time.RFC3339),
				"work_hours": hours,
			},
			CreatedAt: s.now(),
		}),
		func(ctx context.Context) error {
			return s.notifier.Queue(ctx, notification.CreateNotificationRequest{
				RecipientID: record.UserID,
				Type:        notification.TypeAutoCheckout,
				Title:       "Missed checkout",
				Message:     fmt.Sprintf("Your session on %s was closed automatically at 23:59:59.", record.Date.Format("2006-01-02")),
			})
		},
	}
	return hooks, nil
}

// CheckIn implements attendance.Service.
func (s *ServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.RecordResponse{}, user.ErrUserNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	now := s.now()
	today := startOfDay(now)

	decision, err := s.guardDevice(ctx, userID, req.Device)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	dept := departmentOf(&profile)
	if !timepolicy.CanCheckIn(now, dept, profile.Role) {
		cutoff := timepolicy.CheckInCutoff(now)
		return attendance.RecordResponse{}, fmt.Errorf("%w (cutoff %s)", attendance.ErrCheckInCutoffPassed, cutoff.Format("15:04"))
	}

	var hooks []func(context.Context) error

	// A stale open session from a previous day must not block new
	// attendance indefinitely: close it at that day's boundary first.
	open, err := s.repo.GetOpenSession(ctx, userID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up open session: %w", err)
	}
	if open != nil {
		if !open.Date.Before(today) {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
		closeHooks, err := s.autoClose(ctx, *open)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		hooks = append(hooks, closeHooks...)
	}

	// Advisory pre-check only; the storage-level uniqueness index is the
	// arbiter under concurrency.
	existing, err := s.repo.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up today's attendance: %w", err)
	}
	if existing != nil {
		if existing.IsOpen() {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.RecordResponse{}, attendance.ErrAttendanceCompleted
	}

	var result geofence.Result
	method := attendance.MethodProximity

	if req.IsQR() {
		method = attendance.MethodQR
		loc, err := s.locRepo.GetByID(ctx, *req.QRLocationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.RecordResponse{}, location.ErrLocationNotFound
			}
			return attendance.RecordResponse{}, fmt.Errorf("failed to load QR location: %w", err)
		}

		if req.HasCoordinates() {
			result, err = s.geoValidator.ValidatePosition(ctx,
				geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude},
				[]location.GeofenceLocation{loc}, req.Device.DeviceClass, geofence.CheckKindIn)
			if err != nil {
				return attendance.RecordResponse{}, err
			}
			if !result.WithinTolerance {
				return attendance.RecordResponse{}, fmt.Errorf("%w: %dm from %s (allowed %.0fm)",
					attendance.ErrOutsideRadius, result.DisplayDistanceMeters, result.Nearest.Name, result.ToleranceMeters)
			}
		} else {
			// QR possession alone is accepted as a weaker proof of presence.
			result = s.geoValidator.AcceptUnverified(userID, &loc)
		}
	} else {
		candidates, err := s.candidateLocations(ctx, &profile)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to load candidate locations: %w", err)
		}

		result, err = s.geoValidator.ValidatePosition(ctx,
			geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude},
			candidates, req.Device.DeviceClass, geofence.CheckKindIn)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		if !result.WithinTolerance {
			return attendance.RecordResponse{}, fmt.Errorf("%w: %dm from %s (allowed %.0fm)",
				attendance.ErrOutsideRadius, result.DisplayDistanceMeters, result.Nearest.Name, result.ToleranceMeters)
		}
	}

	latenessNeeded := timepolicy.RequiresLatenessReason(now, dept, profile.Role) && req.LateReason == nil

	data := attendance.Record{
		UserID:        userID,
		Date:          today,
		CheckIn:       now,
		CheckInMethod: method,
		GPSVerified:   result.ProximityVerified,
		LateReason:    req.LateReason,
	}
	if result.Nearest != nil {
		id := result.Nearest.ID
		data.CheckInLocationID = &id
	}
	if req.HasCoordinates() {
		data.CheckInLatitude = req.Latitude
		data.CheckInLongitude = req.Longitude
		d := result.DisplayDistanceMeters
		data.CheckInDistanceMeters = &d
	}

	created, err := s.repo.Create(ctx, data)
	if err != nil {
		// Losing the race to the uniqueness index is the same user-facing
		// condition as the advisory pre-check.
		if database.IsUniqueViolation(err) {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	recordID := created.ID
	hooks = append(hooks, s.auditHook(audit.Entry{
		UserID:    userID,
		RecordID:  &recordID,
		Action:    audit.ActionCheckIn,
		FromState: attendance.StateNoSession,
		ToState:   attendance.StateCheckedIn,
		Details: map[string]interface{}{
			"method":             method,
			"distance_meters":    created.CheckInDistanceMeters,
			"proximity_verified": result.ProximityVerified,
			"gps_available":      result.GPSAvailable,
		},
		CreatedAt: now,
	}))
	s.postCommit(ctx, hooks)

	resp := mapRecordToResponse(created)
	resp.LatenessReasonNeeded = latenessNeeded
	resp.MultipleDevices = decision.MultipleDevices
	return resp, nil
}

// CheckOut implements attendance.Service.
func (s *ServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.RecordResponse{}, user.ErrUserNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	now := s.now()
	today := startOfDay(now)

	if _, err := s.guardDevice(ctx, userID, req.Device); err != nil {
		return attendance.RecordResponse{}, err
	}

	dept := departmentOf(&profile)
	if !timepolicy.CanCheckOut(now, dept, profile.Role) {
		cutoff := timepolicy.CheckOutCutoff(now)
		return attendance.RecordResponse{}, fmt.Errorf("%w (cutoff %s)", attendance.ErrCheckOutCutoffPassed, cutoff.Format("15:04"))
	}

	record, err := s.openRecordForToday(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	method := attendance.MethodCheckOutProximity
	if req.QR {
		method = attendance.MethodCheckOutQR
	}

	result, earlyReasonNeeded, err := s.validateCheckOutPosition(ctx, &profile, record, req, now)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	record.CheckOut = &now
	record.CheckOutMethod = &method
	record.CheckOutLatitude = req.Latitude
	record.CheckOutLongitude = req.Longitude
	if result.Nearest != nil {
		id := result.Nearest.ID
		record.CheckOutLocationID = &id
	}
	if req.HasCoordinates() {
		d := result.DisplayDistanceMeters
		record.CheckOutDistanceMeters = &d
	}
	hours := workHoursBetween(record.CheckIn, now)
	record.WorkHours = &hours
	record.EarlyCheckoutReason = req.EarlyCheckoutReason

	ok, err := s.repo.CloseSession(ctx, *record)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to close session: %w", err)
	}
	if !ok {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedOut
	}

	recordID := record.ID
	s.postCommit(ctx, []func(context.Context) error{
		s.auditHook(audit.Entry{
			UserID:    userID,
			RecordID:  &recordID,
			Action:    audit.ActionCheckOut,
			FromState: attendance.StateCheckedIn,
			ToState:   attendance.StateCheckedOut,
			Details: map[string]interface{}{
				"method":          method,
				"distance_meters": record.CheckOutDistanceMeters,
				"work_hours":      hours,
			},
			CreatedAt: now,
		}),
	})

	resp := mapRecordToResponse(*record)
	resp.EarlyReasonNeeded = earlyReasonNeeded
	return resp, nil
}

// openRecordForToday loads today's open session, distinguishing "never
// checked in" from "already checked out".
func (s *ServiceImpl) openRecordForToday(ctx context.Context, userID string, today time.Time) (*attendance.Record, error) {
	record, err := s.repo.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to look up today's attendance: %w", err)
	}
	if record == nil {
		return nil, attendance.ErrNotCheckedIn
	}
	if !record.IsOpen() {
		return nil, attendance.ErrAlreadyCheckedOut
	}
	return record, nil
}

// validateCheckOutPosition runs the geofence check for a checkout and
// evaluates the advisory early-checkout-reason predicate.
func (s *ServiceImpl) validateCheckOutPosition(ctx context.Context, profile *user.Profile, record *attendance.Record, req attendance.CheckOutRequest, now time.Time) (geofence.Result, bool, error) {
	var result geofence.Result

	if req.QR && !req.HasCoordinates() {
		var loc location.GeofenceLocation
		var err error
		switch {
		case req.LocationID != nil:
			loc, err = s.locRepo.GetByID(ctx, *req.LocationID)
		case record.CheckInLocationID != nil:
			loc, err = s.locRepo.GetByID(ctx, *record.CheckInLocationID)
		default:
			return result, false, location.ErrLocationNotFound
		}
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return result, false, location.ErrLocationNotFound
			}
			return result, false, fmt.Errorf("failed to load checkout location: %w", err)
		}
		result = s.geoValidator.AcceptUnverified(record.UserID, &loc)
	} else {
		candidates, err := s.candidateLocations(ctx, profile)
		if err != nil {
			return result, false, fmt.Errorf("failed to load candidate locations: %w", err)
		}

		result, err = s.geoValidator.ValidatePosition(ctx,
			geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude},
			candidates, req.Device.DeviceClass, geofence.CheckKindOut)
		if err != nil {
			return result, false, err
		}
		if !result.WithinTolerance {
			return result, false, fmt.Errorf("%w: %dm from %s (allowed %.0fm)",
				attendance.ErrOutsideRadius, result.DisplayDistanceMeters, result.Nearest.Name, result.ToleranceMeters)
		}
	}

	earlyReasonNeeded := false
	if result.Nearest != nil {
		earlyReasonNeeded = timepolicy.RequiresEarlyCheckoutReason(now, result.Nearest.RequiresEarlyCheckoutReason, profile.Role) &&
			req.EarlyCheckoutReason == nil
	}

	return result, earlyReasonNeeded, nil
}

// EmergencyCheckOut implements attendance.Service.
func (s *ServiceImpl) EmergencyCheckOut(ctx context.Context, req attendance.EmergencyCheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.RecordResponse{}, user.ErrUserNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to load profile: %w", err)
	}

	now := s.now()
	today := startOfDay(now)

	if _, err := s.guardDevice(ctx, userID, req.Device); err != nil {
		return attendance.RecordResponse{}, err
	}

	record, err := s.openRecordForToday(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	onLeave, err := s.leaveRepo.IsOnApprovedLeave(ctx, userID, today)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check leave status: %w", err)
	}
	if onLeave {
		return attendance.RecordResponse{}, attendance.ErrOnApprovedLeave
	}

	// The emergency path waives no distance check, only session duration.
	if now.Sub(record.CheckIn) > emergencyWindow {
		return attendance.RecordResponse{}, attendance.ErrEmergencyWindowExpired
	}

	candidates, err := s.candidateLocations(ctx, &profile)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to load candidate locations: %w", err)
	}

	result, err := s.geoValidator.ValidatePosition(ctx,
		geofence.Position{Latitude: *req.Latitude, Longitude: *req.Longitude},
		candidates, req.Device.DeviceClass, geofence.CheckKindOut)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if !result.WithinTolerance {
		return attendance.RecordResponse{}, fmt.Errorf("%w: %dm from %s (allowed %.0fm)",
			attendance.ErrOutsideRadius, result.DisplayDistanceMeters, result.Nearest.Name, result.ToleranceMeters)
	}

	method := attendance.MethodCheckOutEmergency
	reason := req.Reason

	record.CheckOut = &now
	record.CheckOutMethod = &method
	record.CheckOutLatitude = req.Latitude
	record.CheckOutLongitude = req.Longitude
	if result.Nearest != nil {
		id := result.Nearest.ID
		record.CheckOutLocationID = &id
	}
	d := result.DisplayDistanceMeters
	record.CheckOutDistanceMeters = &d
	hours := workHoursBetween(record.CheckIn, now)
	record.WorkHours = &hours
	record.EmergencyCheckout = true
	record.EmergencyReason = &reason

	ok, err := s.repo.CloseSession(ctx, *record)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to close session: %w", err)
	}
	if !ok {
		return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedOut
	}

	recordID := record.ID
	s.postCommit(ctx, []func(context.Context) error{
		s.auditHook(audit.Entry{
			UserID:    userID,
			RecordID:  &recordID,
			Action:    audit.ActionEmergencyCheckOut,
			FromState: attendance.StateCheckedIn,
			ToState:   attendance.StateCheckedOut,
			Details: map[string]interface{}{
				"reason":          reason,
				"distance_meters": d,
				"work_hours":      hours,
			},
			CreatedAt: now,
		}),
		func(ctx context.Context) error {
			head, err := s.profileRepo.GetDepartmentHead(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to resolve department head: %w", err)
			}
			return s.notifier.Queue(ctx, notification.CreateNotificationRequest{
				RecipientID: head.ID,
				SenderID:    &userID,
				Type:        notification.TypeEmergencyCheckout,
				Title:       "Emergency checkout",
				Message:     fmt.Sprintf("%s checked out early: %s", profile.FullName, reason),
			})
		},
	})

	return mapRecordToResponse(*record), nil
}

// CreateConfirmedOffPremises implements attendance.Service. The record is
// credited at the anchor timestamp (the original request submission), not
// the approval time.
func (s *ServiceImpl) CreateConfirmedOffPremises(ctx context.Context, userID string, anchor attendance.CheckInAnchor) (attendance.RecordResponse, error) {
	day := startOfDay(anchor.Timestamp)

	data := attendance.Record{
		UserID:           userID,
		Date:             day,
		CheckIn:          anchor.Timestamp,
		CheckInMethod:    attendance.MethodOffPremisesConfirmed,
		CheckInLatitude:  anchor.Latitude,
		CheckInLongitude: anchor.Longitude,
		OffPremises:      true,
		GPSVerified:      false,
	}
	note := fmt.Sprintf("off-premises location: %s", anchor.LocationName)
	data.Notes = &note

	created, err := s.repo.Create(ctx, data)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return attendance.RecordResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to create off-premises attendance record: %w", err)
	}

	recordID := created.ID
	s.postCommit(ctx, []func(context.Context) error{
		s.auditHook(audit.Entry{
			UserID:    userID,
			RecordID:  &recordID,
			Action:    audit.ActionCheckIn,
			FromState: attendance.StateNoSession,
			ToState:   attendance.StateCheckedIn,
			Details: map[string]interface{}{
				"method":        attendance.MethodOffPremisesConfirmed,
				"location_name": anchor.LocationName,
				"anchored_at":   anchor.Timestamp.Format(time.RFC3339),
			},
			CreatedAt: s.now(),
		}),
	})

	return mapRecordToResponse(created), nil
}

// SweepMissedCheckouts implements attendance.Service.
func (s *ServiceImpl) SweepMissedCheckouts(ctx context.Context) (int, error) {
	today := startOfDay(s.now())

	stale, err := s.repo.ListOpenBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale open sessions: %w", err)
	}

	closed := 0
	for _, record := range stale {
		hooks, err := s.autoClose(ctx, record)
		if err != nil {
			slog.Error("failed to auto-close session", "record_id", record.ID, "error", err)
			continue
		}
		if hooks != nil {
			closed++
			s.postCommit(ctx, hooks)
		}
	}

	return closed, nil
}

// GetMyAttendance implements attendance.Service.
func (s *ServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// ListAttendance implements attendance.Service.
func (s *ServiceImpl) ListAttendance(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

func buildListResponse(records []attendance.Record, total int64, filter attendance.RecordFilter) attendance.ListRecordsResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      limit,
		TotalPages: totalPages,
		Records:    responses,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// mapRecordToResponse converts a Record entity to RecordResponse
func mapRecordToResponse(record attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:                    record.ID,
		UserID:                record.UserID,
		UserName:              record.UserName,
		Date:                  record.Date.Format("2006-01-02"),
		CheckInTime:           record.CheckIn.Format("2006-01-02 15:04:05"),
		CheckInMethod:         record.CheckInMethod,
		CheckInLocationID:     record.CheckInLocationID,
		CheckInLocationName:   record.CheckInLocationName,
		CheckInDistanceMeters: record.CheckInDistanceMeters,
		GPSVerified:           record.GPSVerified,
		CheckOutTime:          timePtrToString(record.CheckOut),
		CheckOutMethod:        record.CheckOutMethod,
		CheckOutLocationID:    record.CheckOutLocationID,
		WorkHours:             record.WorkHours,
		OffPremises:           record.OffPremises,
		AutoCheckout:          record.AutoCheckout,
		EmergencyCheckout:     record.EmergencyCheckout,
		EmergencyReason:       record.EmergencyReason,
		LateReason:            record.LateReason,
		EarlyCheckoutReason:   record.EarlyCheckoutReason,
		CreatedAt:             record.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:             record.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
