package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrAttendanceCompleted = errors.New("you have already completed attendance for today")
	ErrOutsideRadius       = errors.New("you are outside the allowed radius")
	ErrCheckInCutoffPassed = errors.New("check-in is not permitted past the cutoff time")

	// Check-out errors
	ErrNotCheckedIn         = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut    = errors.New("you have already checked out")
	ErrCheckOutCutoffPassed = errors.New("check-out is not permitted past the cutoff time")

	// Emergency check-out errors
	ErrEmergencyWindowExpired = errors.New("emergency checkout is only allowed within 30 minutes of check-in")
	ErrOnApprovedLeave        = errors.New("emergency checkout is not allowed while on approved leave")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
