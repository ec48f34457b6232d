package device

import (
	"github.com/presensia/attendance-backend-go/internal/pkg/validator"
)

type CheckBindingRequest struct {
	DeviceID  string `json:"device_id"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"-"`
}

func (r *CheckBindingRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DeviceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "device_id",
			Message: "device_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckBindingResponse struct {
	Allowed         bool    `json:"allowed"`
	Outcome         string  `json:"outcome"`
	BoundUserEmail  *string `json:"bound_user_email,omitempty"`
	MultipleDevices bool    `json:"multiple_devices,omitempty"`
}
