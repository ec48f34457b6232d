package offpremises

import (
	"github.com/presensia/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// OFF-PREMISES DTOs
// ========================================

type SubmitRequest struct {
	LocationName   string   `json:"location_name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	Reason         string   `json:"reason"`
	DeviceID       *string  `json:"device_id,omitempty"`
	DeviceClass    *string  `json:"device_class,omitempty"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LocationName) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_name",
			Message: "location_name is required",
		})
	}

	if r.Latitude == nil || r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "coordinates are required",
		})
	} else {
		if !validator.IsValidLatitude(*r.Latitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if !validator.IsValidLongitude(*r.Longitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideRequest struct {
	RequestID string  `json:"request_id"`
	Approved  bool    `json:"approved"`
	Comments  *string `json:"comments,omitempty"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RequestResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	UserName       *string  `json:"user_name,omitempty"`
	DepartmentName *string  `json:"department_name,omitempty"`
	LocationName   string   `json:"location_name"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	Reason         string   `json:"reason"`
	Status         string   `json:"status"`
	ApproverID     *string  `json:"approver_id,omitempty"`
	DecidedAt      *string  `json:"decided_at,omitempty"`
	Comments       *string  `json:"comments,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

type DecideResponse struct {
	Request RequestResponse `json:"request"`

	// AttendanceRecordID is set on approval: the id of the attendance
	// record credited at the request's submission time.
	AttendanceRecordID *string `json:"attendance_record_id,omitempty"`
}
