package device

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/domain/notification"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeviceRepo struct {
	bindings   map[string]*device.Binding
	violations []device.SecurityViolation
	lookupErr  error
	createErr  error
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{bindings: map[string]*device.Binding{}}
}

func (f *fakeDeviceRepo) GetActiveBinding(_ context.Context, deviceID string) (*device.Binding, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.bindings[deviceID], nil
}

func (f *fakeDeviceRepo) CreateBinding(_ context.Context, binding device.Binding) (device.Binding, error) {
	if f.createErr != nil {
		return device.Binding{}, f.createErr
	}
	binding.ID = "bind-" + binding.DeviceID
	stored := binding
	f.bindings[binding.DeviceID] = &stored
	return binding, nil
}

func (f *fakeDeviceRepo) RefreshBinding(_ context.Context, _ string, _, _ *string) error {
	return nil
}

func (f *fakeDeviceRepo) CountActiveBindingsForUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, b := range f.bindings {
		if b.UserID == userID && b.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeDeviceRepo) CreateViolation(_ context.Context, v device.SecurityViolation) (device.SecurityViolation, error) {
	v.ID = "viol-1"
	f.violations = append(f.violations, v)
	return v, nil
}

type fakeProfileRepo struct {
	profiles map[string]user.Profile
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (user.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return user.Profile{}, user.ErrUserNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) ListApproversByDepartment(_ context.Context, _ string) ([]user.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) GetDepartmentHead(_ context.Context, userID string) (user.Profile, error) {
	return user.Profile{ID: "head-of-" + userID}, nil
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

func newGuard(repo *fakeDeviceRepo, notifier *fakeNotifier, auditRepo *fakeAuditRepo) device.Service {
	profiles := &fakeProfileRepo{profiles: map[string]user.Profile{
		"owner-1": {ID: "owner-1", Email: "owner@example.com"},
		"user-2":  {ID: "user-2", Email: "other@example.com"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDeviceService(repo, profiles, auditRepo, notifier, logger)
}

func bindReq(deviceID string) device.CheckBindingRequest {
	return device.CheckBindingRequest{DeviceID: deviceID, UserAgent: "test-agent", IPAddress: "10.0.0.1"}
}

func TestCheckAndBind_NewDeviceBound(t *testing.T) {
	repo := newFakeDeviceRepo()
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	decision := guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))

	assert.Equal(t, device.OutcomeAllowed, decision.Outcome)
	assert.True(t, decision.Allowed())
	require.NotNil(t, repo.bindings["dev-1"])
	assert.Equal(t, "owner-1", repo.bindings["dev-1"].UserID)
}

func TestCheckAndBind_SameUserAllowed(t *testing.T) {
	repo := newFakeDeviceRepo()
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))
	decision := guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))

	assert.Equal(t, device.OutcomeAllowed, decision.Outcome)
	assert.False(t, decision.MultipleDevices)
}

func TestCheckAndBind_ConflictDenied(t *testing.T) {
	repo := newFakeDeviceRepo()
	notifier := &fakeNotifier{}
	auditRepo := &fakeAuditRepo{}
	guard := newGuard(repo, notifier, auditRepo)

	guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))
	decision := guard.CheckAndBind(context.Background(), "user-2", bindReq("dev-1"))

	assert.Equal(t, device.OutcomeDenied, decision.Outcome)
	assert.False(t, decision.Allowed())
	require.NotNil(t, decision.BoundUserEmail)
	assert.Equal(t, "owner@example.com", *decision.BoundUserEmail)

	require.Len(t, repo.violations, 1)
	assert.Equal(t, "user-2", repo.violations[0].AttemptedUserID)
	assert.Equal(t, "owner-1", repo.violations[0].BoundUserID)
	assert.Equal(t, device.ViolationTypeDeviceSharing, repo.violations[0].ViolationType)

	require.Len(t, notifier.queued, 1)
	assert.Equal(t, notification.TypeDeviceConflict, notifier.queued[0].Type)
	assert.Equal(t, "head-of-user-2", notifier.queued[0].RecipientID,
		"conflict notice goes to the attempting user's department head")

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, audit.ActionDeviceConflict, auditRepo.entries[0].Action)
}

func TestCheckAndBind_RepeatedConflictRecordsOneViolationEach(t *testing.T) {
	repo := newFakeDeviceRepo()
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))
	guard.CheckAndBind(context.Background(), "user-2", bindReq("dev-1"))
	guard.CheckAndBind(context.Background(), "user-2", bindReq("dev-1"))

	assert.Len(t, repo.violations, 2)
}

func TestCheckAndBind_LookupFailureFailsOpen(t *testing.T) {
	repo := newFakeDeviceRepo()
	repo.lookupErr = errors.New("connection refused")
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	decision := guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))

	assert.Equal(t, device.OutcomeFailOpen, decision.Outcome)
	assert.True(t, decision.Allowed())
}

func TestCheckAndBind_CreateFailureFailsOpen(t *testing.T) {
	repo := newFakeDeviceRepo()
	repo.createErr = errors.New("connection refused")
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	decision := guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))

	assert.Equal(t, device.OutcomeFailOpen, decision.Outcome)
}

func TestCheckAndBind_MultipleDevicesFlagged(t *testing.T) {
	repo := newFakeDeviceRepo()
	guard := newGuard(repo, &fakeNotifier{}, &fakeAuditRepo{})

	guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-1"))
	decision := guard.CheckAndBind(context.Background(), "owner-1", bindReq("dev-2"))

	assert.Equal(t, device.OutcomeAllowed, decision.Outcome)
	assert.True(t, decision.MultipleDevices)
}
