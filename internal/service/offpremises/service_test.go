package offpremises

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/domain/notification"
	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----- fakes -----

type fakeRequestRepo struct {
	requests map[string]*offpremises.PendingCheckin
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*offpremises.PendingCheckin{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, req offpremises.PendingCheckin) (offpremises.PendingCheckin, error) {
	f.nextID++
	req.ID = "req-" + string(rune('0'+f.nextID))
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	stored := req
	f.requests[req.ID] = &stored
	return req, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (offpremises.PendingCheckin, error) {
	if r, ok := f.requests[id]; ok {
		return *r, nil
	}
	return offpremises.PendingCheckin{}, offpremises.ErrRequestNotFound
}

func (f *fakeRequestRepo) Decide(_ context.Context, id, status, approverID string, comments *string, decidedAt time.Time) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.IsDecided() {
		return false, nil
	}
	r.Status = status
	r.ApproverID = &approverID
	r.Comments = comments
	r.DecidedAt = &decidedAt
	return true, nil
}

func (f *fakeRequestRepo) ListPendingForApprover(_ context.Context, _ offpremises.ApproverScope) ([]offpremises.PendingCheckin, error) {
	var out []offpremises.PendingCheckin
	for _, r := range f.requests {
		if !r.IsDecided() {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	profiles  map[string]user.Profile
	approvers []user.Profile
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (user.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return user.Profile{}, user.ErrUserNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) ListApproversByDepartment(_ context.Context, _ string) ([]user.Profile, error) {
	return f.approvers, nil
}

func (f *fakeProfileRepo) GetDepartmentHead(_ context.Context, _ string) (user.Profile, error) {
	return user.Profile{ID: "head-1"}, nil
}

type fakeAttendanceService struct {
	attendance.Service

	created   []attendance.CheckInAnchor
	createdBy []string
	err       error
}

func (f *fakeAttendanceService) CreateConfirmedOffPremises(_ context.Context, userID string, anchor attendance.CheckInAnchor) (attendance.RecordResponse, error) {
	if f.err != nil {
		return attendance.RecordResponse{}, f.err
	}
	f.created = append(f.created, anchor)
	f.createdBy = append(f.createdBy, userID)
	return attendance.RecordResponse{
		ID:            "att-1",
		UserID:        userID,
		CheckInMethod: attendance.MethodOffPremisesConfirmed,
		CheckInTime:   anchor.Timestamp.Format("2006-01-02 15:04:05"),
		OffPremises:   true,
	}, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
}

func (f *fakeAuditRepo) Create(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct {
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) Queue(_ context.Context, req notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, req)
	return nil
}

func (f *fakeNotifier) QueueBulk(_ context.Context, reqs []notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, reqs...)
	return nil
}

func (f *fakeNotifier) GetNotifications(_ context.Context, _ string, _, _ int, _ bool) ([]notification.NotificationResponse, int, error) {
	return nil, 0, nil
}

func (f *fakeNotifier) MarkAsRead(_ context.Context, _ string, _ []string) error { return nil }

func (f *fakeNotifier) Stop() {}

// ----- fixtures -----

func strp(s string) *string { return &s }

func floatp(f float64) *float64 { return &f }

var (
	deptEng   = "dept-eng"
	deptSales = "dept-sales"
)

func testProfiles() map[string]user.Profile {
	return map[string]user.Profile{
		"staff-1": {
			ID: "staff-1", Email: "staff@example.com", FullName: "Staff One",
			Role: user.RoleStaff, DepartmentID: &deptEng, LocationIDs: []string{"loc-1"},
		},
		"staff-managed": {
			ID: "staff-managed", FullName: "Staff Two", Role: user.RoleStaff,
			DepartmentID: &deptEng, ManagerID: strp("manager-1"), LocationIDs: []string{"loc-1"},
		},
		"manager-1": {
			ID: "manager-1", Role: user.RoleDepartmentHead, DepartmentID: &deptEng,
		},
		"head-eng": {
			ID: "head-eng", Role: user.RoleDepartmentHead, DepartmentID: &deptEng,
		},
		"head-sales": {
			ID: "head-sales", Role: user.RoleDepartmentHead, DepartmentID: &deptSales,
		},
		"regional-1": {
			ID: "regional-1", Role: user.RoleRegionalManager, LocationIDs: []string{"loc-1", "loc-2"},
		},
		"regional-far": {
			ID: "regional-far", Role: user.RoleRegionalManager, LocationIDs: []string{"loc-9"},
		},
		"admin-1": {
			ID: "admin-1", Role: user.RoleAdmin,
		},
	}
}

type harness struct {
	svc        *ServiceImpl
	repo       *fakeRequestRepo
	profiles   *fakeProfileRepo
	attendance *fakeAttendanceService
	notifier   *fakeNotifier
	auditRepo  *fakeAuditRepo

	txCalls      int
	txRolledBack bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := newFakeRequestRepo()
	profiles := &fakeProfileRepo{profiles: testProfiles()}
	attendanceSvc := &fakeAttendanceService{}
	auditRepo := &fakeAuditRepo{}
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewOffPremisesService(nil, repo, profiles, attendanceSvc, auditRepo, notifier, logger).(*ServiceImpl)

	h := &harness{svc: svc, repo: repo, profiles: profiles, attendance: attendanceSvc, notifier: notifier, auditRepo: auditRepo}
	svc.withTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		h.txCalls++
		err := fn(ctx)
		if err != nil {
			h.txRolledBack = true
		}
		return err
	}
	return h
}

func authedContext(t *testing.T, userID string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{"user_id": userID})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func submitReq() offpremises.SubmitRequest {
	return offpremises.SubmitRequest{
		LocationName: "Client Site Jakarta",
		Latitude:     floatp(-6.21),
		Longitude:    floatp(106.82),
		Reason:       "on-site client deployment",
	}
}

// ----- submit -----

func TestSubmit_NotifiesDepartmentApprovers(t *testing.T) {
	h := newHarness(t)
	h.profiles.approvers = []user.Profile{
		{ID: "head-eng"}, {ID: "regional-1"},
	}

	resp, err := h.svc.Submit(authedContext(t, "staff-1"), submitReq())
	require.NoError(t, err)

	assert.Equal(t, offpremises.StatusPending, resp.Status)
	require.Len(t, h.notifier.queued, 2)
	assert.Equal(t, notification.TypeOffPremisesRequest, h.notifier.queued[0].Type)
	assert.ElementsMatch(t,
		[]string{"head-eng", "regional-1"},
		[]string{h.notifier.queued[0].RecipientID, h.notifier.queued[1].RecipientID})
}

func TestSubmit_AssignedManagerTakesPrecedence(t *testing.T) {
	h := newHarness(t)
	h.profiles.approvers = []user.Profile{{ID: "head-eng"}}

	_, err := h.svc.Submit(authedContext(t, "staff-managed"), submitReq())
	require.NoError(t, err)

	require.Len(t, h.notifier.queued, 1)
	assert.Equal(t, "manager-1", h.notifier.queued[0].RecipientID)
}

func TestSubmit_NoApproverStillFilesRequest(t *testing.T) {
	h := newHarness(t)
	h.profiles.approvers = nil

	resp, err := h.svc.Submit(authedContext(t, "staff-1"), submitReq())
	assert.ErrorIs(t, err, offpremises.ErrNoApproverAvailable)
	assert.NotEmpty(t, resp.ID)
	assert.Len(t, h.repo.requests, 1)
}

// ----- decide -----

func (h *harness) submitAs(t *testing.T, userID string) string {
	t.Helper()
	h.profiles.approvers = []user.Profile{{ID: "head-eng"}}
	resp, err := h.svc.Submit(authedContext(t, userID), submitReq())
	require.NoError(t, err)
	return resp.ID
}

func TestDecide_ApprovalCreatesAnchoredAttendance(t *testing.T) {
	h := newHarness(t)
	id := h.submitAs(t, "staff-1")
	submittedAt := h.repo.requests[id].CreatedAt

	resp, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{
		RequestID: id, Approved: true,
	})
	require.NoError(t, err)

	assert.Equal(t, offpremises.StatusApproved, resp.Request.Status)
	require.NotNil(t, resp.AttendanceRecordID)
	assert.Equal(t, "att-1", *resp.AttendanceRecordID)

	require.Len(t, h.attendance.created, 1)
	assert.Equal(t, submittedAt, h.attendance.created[0].Timestamp)
	assert.Equal(t, "Client Site Jakarta", h.attendance.created[0].LocationName)
	assert.Equal(t, []string{"staff-1"}, h.attendance.createdBy)
}

func TestDecide_DenialCreatesNoAttendance(t *testing.T) {
	h := newHarness(t)
	id := h.submitAs(t, "staff-1")

	resp, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{
		RequestID: id, Approved: false, Comments: strp("not a sanctioned visit"),
	})
	require.NoError(t, err)

	assert.Equal(t, offpremises.StatusDenied, resp.Request.Status)
	assert.Nil(t, resp.AttendanceRecordID)
	assert.Empty(t, h.attendance.created)

	var denied []notification.CreateNotificationRequest
	for _, n := range h.notifier.queued {
		if n.Type == notification.TypeOffPremisesDenied {
			denied = append(denied, n)
		}
	}
	require.Len(t, denied, 1)
	assert.Equal(t, "staff-1", denied[0].RecipientID)
	assert.Contains(t, denied[0].Message, "not a sanctioned visit")
}

func TestDecide_AttendanceFailureRollsBackDecision(t *testing.T) {
	h := newHarness(t)
	id := h.submitAs(t, "staff-1")
	h.attendance.err = errors.New("insert failed")

	_, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{
		RequestID: id, Approved: true,
	})
	require.Error(t, err)
	assert.Equal(t, 1, h.txCalls)
	assert.True(t, h.txRolledBack, "decision and attendance insert share one transaction")
}

func TestDecide_OverlappingSessionCommitsDecision(t *testing.T) {
	h := newHarness(t)
	id := h.submitAs(t, "staff-1")
	h.attendance.err = attendance.ErrAlreadyCheckedIn

	resp, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{
		RequestID: id, Approved: true,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.AttendanceRecordID)
	assert.False(t, h.txRolledBack)
	assert.Equal(t, offpremises.StatusApproved, resp.Request.Status)
}

func TestDecide_SecondDecisionRejected(t *testing.T) {
	h := newHarness(t)
	id := h.submitAs(t, "staff-1")

	_, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{RequestID: id, Approved: true})
	require.NoError(t, err)

	_, err = h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{RequestID: id, Approved: false})
	assert.ErrorIs(t, err, offpremises.ErrRequestAlreadyDecided)
}

func TestDecide_ScopeEnforced(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		allowed bool
	}{
		{"admin decides anything", "admin-1", true},
		{"department head same department", "head-eng", true},
		{"department head other department", "head-sales", false},
		{"regional manager shared location", "regional-1", true},
		{"regional manager no shared location", "regional-far", false},
		{"staff cannot decide", "staff-managed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			id := h.submitAs(t, "staff-1")

			_, err := h.svc.Decide(authedContext(t, tt.actor), offpremises.DecideRequest{
				RequestID: id, Approved: true,
			})
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, user.ErrApprovalScopeMismatch)
			}
		})
	}
}

func TestDecide_UnknownRequest(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Decide(authedContext(t, "admin-1"), offpremises.DecideRequest{
		RequestID: "req-missing", Approved: true,
	})
	assert.ErrorIs(t, err, offpremises.ErrRequestNotFound)
}

// ----- pending inbox -----

func TestListPending_RequiresManagerRole(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.ListPending(authedContext(t, "staff-1"))
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}

func TestListPending_ReturnsUndecidedOnly(t *testing.T) {
	h := newHarness(t)
	first := h.submitAs(t, "staff-1")
	h.submitAs(t, "staff-managed")

	_, err := h.svc.Decide(authedContext(t, "head-eng"), offpremises.DecideRequest{RequestID: first, Approved: false})
	require.NoError(t, err)

	pending, err := h.svc.ListPending(authedContext(t, "head-eng"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, offpremises.StatusPending, pending[0].Status)
}
