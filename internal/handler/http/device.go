package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/handler/http/response"
)

type DeviceHandler interface {
	CheckBinding(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.Service
}

func NewDeviceHandler(deviceService device.Service) DeviceHandler {
	return &deviceHandlerImpl{
		deviceService: deviceService,
	}
}

// CheckBinding implements DeviceHandler. Always responds 200: binding
// enforcement is advisory at this endpoint, the decision payload carries
// the outcome.
func (h *deviceHandlerImpl) CheckBinding(w http.ResponseWriter, r *http.Request) {
	var req device.CheckBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.IPAddress = clientIP(r)
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "user_id claim is missing")
		return
	}

	decision := h.deviceService.CheckAndBind(r.Context(), userID, req)

	response.Success(w, device.CheckBindingResponse{
		Allowed:         decision.Allowed(),
		Outcome:         string(decision.Outcome),
		BoundUserEmail:  decision.BoundUserEmail,
		MultipleDevices: decision.MultipleDevices,
	})
}
