package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/handler/http/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOffPremisesService struct {
	submitResp offpremises.RequestResponse
	submitErr  error
	decideErr  error
}

func (s *stubOffPremisesService) Submit(_ context.Context, _ offpremises.SubmitRequest) (offpremises.RequestResponse, error) {
	return s.submitResp, s.submitErr
}

func (s *stubOffPremisesService) Decide(_ context.Context, _ offpremises.DecideRequest) (offpremises.DecideResponse, error) {
	return offpremises.DecideResponse{}, s.decideErr
}

func (s *stubOffPremisesService) ListPending(_ context.Context) ([]offpremises.RequestResponse, error) {
	return nil, nil
}

func TestSubmit_NoApproverRejectedWithManualFlag(t *testing.T) {
	handler := NewOffPremisesHandler(&stubOffPremisesService{
		submitResp: offpremises.RequestResponse{ID: "req-1", Status: "pending"},
		submitErr:  offpremises.ErrNoApproverAvailable,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/attendance/offpremises/request",
		strings.NewReader(`{"location_name":"Client site","latitude":-6.2,"longitude":106.8,"reason":"on-site visit"}`))

	handler.Submit(rec, req)

	assert.Equal(t, 400, rec.Code)

	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "true", body.Error.Details["requires_manual_approval"])
	assert.Equal(t, "req-1", body.Error.Details["request_id"], "the request is still filed for manual routing")
}

func TestDecide_AlreadyDecidedReadsAsNotFound(t *testing.T) {
	handler := NewOffPremisesHandler(&stubOffPremisesService{
		decideErr: offpremises.ErrRequestAlreadyDecided,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/attendance/offpremises/approve",
		strings.NewReader(`{"request_id":"req-1","approved":true}`))

	handler.Decide(rec, req)

	assert.Equal(t, 404, rec.Code)

	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "ALREADY_DECIDED", body.Error.Code)
}
