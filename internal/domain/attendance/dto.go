package attendance

import (
	"github.com/presensia/attendance-backend-go/internal/domain/location"
	"github.com/presensia/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// DeviceInfo identifies the physical device behind a request. DeviceID is a
// stable client fingerprint; IPAddress is filled in by the handler.
type DeviceInfo struct {
	DeviceID    string               `json:"device_id"`
	DeviceClass location.DeviceClass `json:"device_class"`
	UserAgent   string               `json:"user_agent,omitempty"`
	IPAddress   string               `json:"-"`
}

func (d *DeviceInfo) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(d.DeviceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "device.device_id",
			Message: "device_id is required",
		})
	}

	switch d.DeviceClass {
	case location.DeviceClassMobile, location.DeviceClassTablet, location.DeviceClassLaptop, location.DeviceClassDesktop:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "device.device_class",
			Message: "device_class must be one of mobile, tablet, laptop, desktop",
		})
	}

	return errs
}

func validateCoordinates(lat, lon *float64, errs validator.ValidationErrors) validator.ValidationErrors {
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if lon != nil && !validator.IsValidLongitude(*lon) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	return errs
}

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// QRLocationID is set on the QR-assisted path. When present, missing
	// coordinates degrade to an unverified accept instead of a rejection.
	QRLocationID *string `json:"qr_location_id,omitempty"`

	LateReason *string    `json:"late_reason,omitempty"`
	Device     DeviceInfo `json:"device"`
}

// IsQR reports whether the request takes the QR-assisted entry path.
func (r *CheckInRequest) IsQR() bool {
	return r.QRLocationID != nil && *r.QRLocationID != ""
}

// HasCoordinates reports whether the client supplied a position.
func (r *CheckInRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	// Direct check-ins require a position; QR scans may arrive without one.
	if !r.IsQR() && !r.HasCoordinates() {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "coordinates are required for a direct check-in",
		})
	}

	errs = validateCoordinates(r.Latitude, r.Longitude, errs)
	errs = r.Device.validate(errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	LocationID *string `json:"location_id,omitempty"`
	QR         bool    `json:"qr,omitempty"`

	EarlyCheckoutReason *string    `json:"early_checkout_reason,omitempty"`
	Device              DeviceInfo `json:"device"`
}

func (r *CheckOutRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.QR && !r.HasCoordinates() {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "coordinates are required for a direct check-out",
		})
	}

	errs = validateCoordinates(r.Latitude, r.Longitude, errs)
	errs = r.Device.validate(errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// EmergencyReasonMinLength is the minimum free-text justification length.
const EmergencyReasonMinLength = 10

type EmergencyCheckOutRequest struct {
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Reason    string     `json:"reason"`
	Device    DeviceInfo `json:"device"`
}

func (r *EmergencyCheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil || r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "coordinates are required for an emergency check-out",
		})
	}

	errs = validateCoordinates(r.Latitude, r.Longitude, errs)

	if !validator.MinLength(r.Reason, EmergencyReasonMinLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be at least 10 characters",
		})
	}

	errs = r.Device.validate(errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"user_id"`
	UserName              *string  `json:"user_name,omitempty"`
	Date                  string   `json:"date"`
	CheckInTime           string   `json:"check_in_time"`
	CheckInMethod         string   `json:"check_in_method"`
	CheckInLocationID     *string  `json:"check_in_location_id,omitempty"`
	CheckInLocationName   *string  `json:"check_in_location_name,omitempty"`
	CheckInDistanceMeters *int     `json:"check_in_distance_meters,omitempty"`
	GPSVerified           bool     `json:"gps_verified"`
	CheckOutTime          *string  `json:"check_out_time,omitempty"`
	CheckOutMethod        *string  `json:"check_out_method,omitempty"`
	CheckOutLocationID    *string  `json:"check_out_location_id,omitempty"`
	WorkHours             *float64 `json:"work_hours,omitempty"`
	OffPremises           bool     `json:"on_official_duty_outside_premises"`
	AutoCheckout          bool     `json:"auto_checkout,omitempty"`
	EmergencyCheckout     bool     `json:"emergency_checkout,omitempty"`
	EmergencyReason       *string  `json:"emergency_reason,omitempty"`
	LateReason            *string  `json:"late_reason,omitempty"`
	EarlyCheckoutReason   *string  `json:"early_checkout_reason,omitempty"`
	LatenessReasonNeeded  bool     `json:"lateness_reason_needed,omitempty"`
	EarlyReasonNeeded     bool     `json:"early_checkout_reason_needed,omitempty"`
	MultipleDevices       bool     `json:"multiple_devices,omitempty"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
}

type RecordFilter struct {
	// Search & Filter
	UserID     *string `json:"user_id,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	LocationID *string `json:"location_id,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, v := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if v != nil && *v != "" {
			if _, ok := validator.IsValidDate(*v); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}
