package response

import (
	"errors"
	"net/http"

	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/presensia/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Sentinels carry a
// stable code; the wrapped message keeps the human-readable detail
// (cutoff time, measured distance).
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance session lifecycle
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		ConflictWithCode(w, "ALREADY_CHECKED_IN", "An attendance session is already open for today")
	case errors.Is(err, attendance.ErrAttendanceCompleted):
		ConflictWithCode(w, "ATTENDANCE_COMPLETED", "You already completed attendance for today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequestWithCode(w, "NOT_CHECKED_IN", "No open attendance session to check out from")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		ConflictWithCode(w, "ALREADY_CHECKED_OUT", "Today's session has already been checked out")

	// Geofence and time policy
	case errors.Is(err, attendance.ErrOutsideRadius):
		ForbiddenWithCode(w, "OUT_OF_RANGE", err.Error())
	case errors.Is(err, attendance.ErrCheckInCutoffPassed),
		errors.Is(err, attendance.ErrCheckOutCutoffPassed):
		ForbiddenWithCode(w, "TIME_WINDOW_CLOSED", err.Error())
	case errors.Is(err, attendance.ErrEmergencyWindowExpired):
		ForbiddenWithCode(w, "EMERGENCY_WINDOW_EXPIRED", "Emergency checkout is only available within 30 minutes of check-in")
	case errors.Is(err, attendance.ErrOnApprovedLeave):
		ConflictWithCode(w, "ON_APPROVED_LEAVE", "Cannot record attendance while on approved leave")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Location not found")
	case errors.Is(err, location.ErrNoActiveLocations):
		BadRequestWithCode(w, "NO_ACTIVE_LOCATIONS", "No active attendance locations are configured")

	// Device binding
	case errors.Is(err, device.ErrDeviceConflict):
		ForbiddenWithCode(w, "DEVICE_CONFLICT", err.Error())

	// Off-premises workflow. An already-decided request reads as not found:
	// the pending request the approver is acting on no longer exists.
	case errors.Is(err, offpremises.ErrRequestNotFound):
		NotFound(w, "Off-premises request not found")
	case errors.Is(err, offpremises.ErrRequestAlreadyDecided):
		NotFoundWithCode(w, "ALREADY_DECIDED", "This request has already been decided")
	case errors.Is(err, user.ErrApprovalScopeMismatch):
		ForbiddenWithCode(w, "APPROVAL_SCOPE_MISMATCH", "This request is outside your approval scope")

	// Identity
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
