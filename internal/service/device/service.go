package device

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/domain/device"
	"github.com/presensia/attendance-backend-go/internal/domain/notification"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
)

type ServiceImpl struct {
	repo        device.Repository
	profileRepo user.ProfileRepository
	auditRepo   audit.Repository
	notifier    notification.Service
	logger      *slog.Logger
}

func NewDeviceService(
	repo device.Repository,
	profileRepo user.ProfileRepository,
	auditRepo audit.Repository,
	notifier notification.Service,
	logger *slog.Logger,
) device.Service {
	return &ServiceImpl{
		repo:        repo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// CheckAndBind implements device.Service. Infrastructure faults resolve
// to fail-open; only a confirmed cross-user binding produces a denial.
func (s *ServiceImpl) CheckAndBind(ctx context.Context, userID string, req device.CheckBindingRequest) device.Decision {
	if err := req.Validate(); err != nil {
		// A malformed fingerprint is a client bug, not a sharing attempt.
		s.logger.Warn("device binding check skipped", "user_id", userID, "error", err)
		return device.Decision{Outcome: device.OutcomeFailOpen}
	}

	binding, err := s.repo.GetActiveBinding(ctx, req.DeviceID)
	if err != nil {
		s.logger.Error("device binding lookup failed, failing open", "user_id", userID, "error", err)
		return device.Decision{Outcome: device.OutcomeFailOpen}
	}

	if binding == nil {
		return s.bindNewDevice(ctx, userID, req)
	}

	if binding.UserID == userID {
		if err := s.repo.RefreshBinding(ctx, binding.ID, strPtr(req.IPAddress), strPtr(req.UserAgent)); err != nil {
			s.logger.Warn("failed to refresh device binding", "binding_id", binding.ID, "error", err)
		}
		return device.Decision{
			Outcome:         device.OutcomeAllowed,
			MultipleDevices: s.hasOtherDevices(ctx, userID),
		}
	}

	return s.denyConflict(ctx, userID, binding, req)
}

func (s *ServiceImpl) bindNewDevice(ctx context.Context, userID string, req device.CheckBindingRequest) device.Decision {
	_, err := s.repo.CreateBinding(ctx, device.Binding{
		DeviceID:  req.DeviceID,
		UserID:    userID,
		IPAddress: strPtr(req.IPAddress),
		UserAgent: strPtr(req.UserAgent),
		IsActive:  true,
	})
	if err != nil {
		s.logger.Error("failed to create device binding, failing open", "user_id", userID, "error", err)
		return device.Decision{Outcome: device.OutcomeFailOpen}
	}

	return device.Decision{
		Outcome:         device.OutcomeAllowed,
		MultipleDevices: s.hasOtherDevices(ctx, userID),
	}
}

// denyConflict records exactly one violation for the attempt and notifies
// the attempting user's department head. Only the bound user's email is
// ever disclosed to the caller.
func (s *ServiceImpl) denyConflict(ctx context.Context, userID string, binding *device.Binding, req device.CheckBindingRequest) device.Decision {
	violation, err := s.repo.CreateViolation(ctx, device.SecurityViolation{
		DeviceID:        req.DeviceID,
		AttemptedUserID: userID,
		BoundUserID:     binding.UserID,
		ViolationType:   device.ViolationTypeDeviceSharing,
		IPAddress:       strPtr(req.IPAddress),
	})
	if err != nil {
		s.logger.Error("failed to record device violation", "device_id", req.DeviceID, "error", err)
	}

	decision := device.Decision{Outcome: device.OutcomeDenied}
	if err == nil {
		decision.Violation = &violation
	}

	boundProfile, err := s.profileRepo.GetByID(ctx, binding.UserID)
	if err != nil {
		s.logger.Warn("failed to load bound user profile", "user_id", binding.UserID, "error", err)
	} else {
		email := boundProfile.Email
		decision.BoundUserEmail = &email
	}

	if err := s.auditRepo.Create(ctx, audit.Entry{
		UserID: userID,
		Action: audit.ActionDeviceConflict,
		Details: map[string]interface{}{
			"device_id":     req.DeviceID,
			"bound_user_id": binding.UserID,
		},
	}); err != nil {
		s.logger.Warn("failed to audit device conflict", "device_id", req.DeviceID, "error", err)
	}

	// Notifying the department head is best effort.
	head, err := s.profileRepo.GetDepartmentHead(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve department head for conflict notice", "user_id", userID, "error", err)
		return decision
	}
	if err := s.notifier.Queue(ctx, notification.CreateNotificationRequest{
		RecipientID: head.ID,
		Type:        notification.TypeDeviceConflict,
		Title:       "Device sharing detected",
		Message:     fmt.Sprintf("A device bound to one of your staff was used by another account (device %s).", req.DeviceID),
		Data: map[string]interface{}{
			"device_id":         req.DeviceID,
			"attempted_user_id": userID,
		},
	}); err != nil {
		s.logger.Warn("failed to queue device conflict notice", "device_id", req.DeviceID, "error", err)
	}

	return decision
}

// hasOtherDevices flags a user already bound to more than one device.
// Informational; lookup failures simply drop the flag.
func (s *ServiceImpl) hasOtherDevices(ctx context.Context, userID string) bool {
	count, err := s.repo.CountActiveBindingsForUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to count device bindings", "user_id", userID, "error", err)
		return false
	}
	return count > 1
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
