package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/handler/http/response"
)

type OffPremisesHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
}

type offPremisesHandlerImpl struct {
	offPremisesService offpremises.Service
}

func NewOffPremisesHandler(offPremisesService offpremises.Service) OffPremisesHandler {
	return &offPremisesHandlerImpl{
		offPremisesService: offPremisesService,
	}
}

// Submit implements OffPremisesHandler.
func (h *offPremisesHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req offpremises.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.offPremisesService.Submit(r.Context(), req)
	if err != nil {
		// The request is still filed for manual routing, but the submission
		// is rejected: nobody can approve it through the normal flow.
		if errors.Is(err, offpremises.ErrNoApproverAvailable) {
			response.BadRequest(w, "No approver available for this request", map[string]string{
				"requires_manual_approval": "true",
				"request_id":               result.ID,
			})
			return
		}
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Off-premises request submitted", result)
}

// Decide implements OffPremisesHandler.
func (h *offPremisesHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req offpremises.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.offPremisesService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request decided", result)
}

// ListPending implements OffPremisesHandler.
func (h *offPremisesHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.offPremisesService.ListPending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, pending)
}
