package offpremises

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/presensia/attendance-backend-go/internal/domain/attendance"
	"github.com/presensia/attendance-backend-go/internal/domain/audit"
	"github.com/presensia/attendance-backend-go/internal/domain/notification"
	"github.com/presensia/attendance-backend-go/internal/domain/offpremises"
	"github.com/presensia/attendance-backend-go/internal/domain/user"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
	"github.com/presensia/attendance-backend-go/internal/repository/postgresql"
)

type ServiceImpl struct {
	repo          offpremises.Repository
	profileRepo   user.ProfileRepository
	attendanceSvc attendance.Service
	auditRepo     audit.Repository
	notifier      notification.Service
	logger        *slog.Logger

	now    func() time.Time
	withTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewOffPremisesService(
	db *database.DB,
	repo offpremises.Repository,
	profileRepo user.ProfileRepository,
	attendanceSvc attendance.Service,
	auditRepo audit.Repository,
	notifier notification.Service,
	logger *slog.Logger,
) offpremises.Service {
	return &ServiceImpl{
		repo:          repo,
		profileRepo:   profileRepo,
		attendanceSvc: attendanceSvc,
		auditRepo:     auditRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
		withTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
				return fn(context.WithValue(ctx, "tx", tx))
			})
		},
	}
}

func userIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// resolveApprovers finds who must act on a request: the assigned manager
// when one exists, otherwise every department head and regional manager
// of the requester's department.
func (s *ServiceImpl) resolveApprovers(ctx context.Context, requester *user.Profile) ([]user.Profile, error) {
	if requester.ManagerID != nil {
		manager, err := s.profileRepo.GetByID(ctx, *requester.ManagerID)
		if err == nil {
			return []user.Profile{manager}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load assigned manager: %w", err)
		}
		s.logger.Warn("assigned manager not found, falling back to department approvers",
			"user_id", requester.ID, "manager_id", *requester.ManagerID)
	}

	if requester.DepartmentID == nil {
		return nil, nil
	}

	approvers, err := s.profileRepo.ListApproversByDepartment(ctx, *requester.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department approvers: %w", err)
	}
	return approvers, nil
}

// Submit implements offpremises.Service.
func (s *ServiceImpl) Submit(ctx context.Context, req offpremises.SubmitRequest) (offpremises.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return offpremises.RequestResponse{}, err
	}

	userID, err := userIDFromClaims(ctx)
	if err != nil {
		return offpremises.RequestResponse{}, err
	}

	requester, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return offpremises.RequestResponse{}, user.ErrUserNotFound
		}
		return offpremises.RequestResponse{}, fmt.Errorf("failed to load requester profile: %w", err)
	}

	approvers, err := s.resolveApprovers(ctx, &requester)
	if err != nil {
		return offpremises.RequestResponse{}, err
	}

	created, err := s.repo.Create(ctx, offpremises.PendingCheckin{
		UserID:         userID,
		LocationName:   req.LocationName,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		Reason:         req.Reason,
		DeviceID:       req.DeviceID,
		DeviceClass:    req.DeviceClass,
		Status:         offpremises.StatusPending,
	})
	if err != nil {
		return offpremises.RequestResponse{}, fmt.Errorf("failed to create off-premises request: %w", err)
	}

	requestID := created.ID
	if err := s.auditRepo.Create(ctx, audit.Entry{
		UserID: userID,
		Action: audit.ActionOffPremisesSubmit,
		Details: map[string]interface{}{
			"request_id":    requestID,
			"location_name": req.LocationName,
		},
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Warn("failed to audit off-premises submission", "request_id", requestID, "error", err)
	}

	// The request stays filed even when no approver exists; a manual
	// escalation path picks it up.
	if len(approvers) == 0 {
		return mapRequestToResponse(created), fmt.Errorf("%w (request %s filed for manual review)", offpremises.ErrNoApproverAvailable, requestID)
	}

	notices := make([]notification.CreateNotificationRequest, 0, len(approvers))
	for _, approver := range approvers {
		notices = append(notices, notification.CreateNotificationRequest{
			RecipientID: approver.ID,
			SenderID:    &userID,
			Type:        notification.TypeOffPremisesRequest,
			Title:       "Off-premises check-in request",
			Message:     fmt.Sprintf("%s requests attendance from %s: %s", requester.FullName, req.LocationName, req.Reason),
			Data: map[string]interface{}{
				"request_id": requestID,
			},
		})
	}
	if err := s.notifier.QueueBulk(ctx, notices); err != nil {
		s.logger.Warn("failed to queue approver notifications", "request_id", requestID, "error", err)
	}

	return mapRequestToResponse(created), nil
}

// Decide implements offpremises.Service. A request is decided exactly
// once; a second decision attempt is rejected no matter who makes it.
func (s *ServiceImpl) Decide(ctx context.Context, req offpremises.DecideRequest) (offpremises.DecideResponse, error) {
	if err := req.Validate(); err != nil {
		return offpremises.DecideResponse{}, err
	}

	actorID, err := userIDFromClaims(ctx)
	if err != nil {
		return offpremises.DecideResponse{}, err
	}

	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return offpremises.DecideResponse{}, user.ErrUserNotFound
		}
		return offpremises.DecideResponse{}, fmt.Errorf("failed to load approver profile: %w", err)
	}

	pending, err := s.repo.GetByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return offpremises.DecideResponse{}, offpremises.ErrRequestNotFound
		}
		return offpremises.DecideResponse{}, fmt.Errorf("failed to load off-premises request: %w", err)
	}
	if pending.IsDecided() {
		return offpremises.DecideResponse{}, offpremises.ErrRequestAlreadyDecided
	}

	requester, err := s.profileRepo.GetByID(ctx, pending.UserID)
	if err != nil {
		return offpremises.DecideResponse{}, fmt.Errorf("failed to load requester profile: %w", err)
	}

	if !user.CanApproveOffPremises(&actor, &requester) {
		return offpremises.DecideResponse{}, user.ErrApprovalScopeMismatch
	}

	status := offpremises.StatusDenied
	if req.Approved {
		status = offpremises.StatusApproved
	}
	decidedAt := s.now()

	// The status flip and the anchored attendance record commit together:
	// a request must not read as decided when the record insert failed.
	var attendanceRecordID *string
	err = s.withTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.Decide(txCtx, pending.ID, status, actorID, req.Comments, decidedAt)
		if err != nil {
			return fmt.Errorf("failed to decide off-premises request: %w", err)
		}
		if !ok {
			return offpremises.ErrRequestAlreadyDecided
		}
		if !req.Approved {
			return nil
		}

		// The attendance record is credited at submission time, so the
		// requester is not penalized for approval latency.
		lat, lon := pending.Latitude, pending.Longitude
		record, err := s.attendanceSvc.CreateConfirmedOffPremises(txCtx, pending.UserID, attendance.CheckInAnchor{
			Timestamp:    pending.CreatedAt,
			LocationName: pending.LocationName,
			Latitude:     &lat,
			Longitude:    &lon,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				s.logger.Warn("approved off-premises request overlaps an existing session",
					"request_id", pending.ID, "user_id", pending.UserID)
				return nil
			}
			return fmt.Errorf("failed to create confirmed attendance: %w", err)
		}
		recordID := record.ID
		attendanceRecordID = &recordID
		return nil
	})
	if err != nil {
		return offpremises.DecideResponse{}, err
	}

	pending.Status = status
	pending.ApproverID = &actorID
	pending.DecidedAt = &decidedAt
	pending.Comments = req.Comments

	resp := offpremises.DecideResponse{Request: mapRequestToResponse(pending)}
	resp.AttendanceRecordID = attendanceRecordID

	auditAction := audit.ActionOffPremisesDeny
	noticeType := notification.TypeOffPremisesDenied
	noticeTitle := "Off-premises request denied"
	if req.Approved {
		auditAction = audit.ActionOffPremisesApprove
		noticeType = notification.TypeOffPremisesApproved
		noticeTitle = "Off-premises request approved"
	}

	if err := s.auditRepo.Create(ctx, audit.Entry{
		UserID:    actorID,
		Action:    auditAction,
		Details:   map[string]interface{}{"request_id": pending.ID, "requester_id": pending.UserID},
		CreatedAt: decidedAt,
	}); err != nil {
		s.logger.Warn("failed to audit off-premises decision", "request_id", pending.ID, "error", err)
	}

	message := fmt.Sprintf("Your off-premises check-in at %s was %s.", pending.LocationName, status)
	if req.Comments != nil && *req.Comments != "" {
		message = fmt.Sprintf("%s Comments: %s", message, *req.Comments)
	}
	if err := s.notifier.Queue(ctx, notification.CreateNotificationRequest{
		RecipientID: pending.UserID,
		SenderID:    &actorID,
		Type:        noticeType,
		Title:       noticeTitle,
		Message:     message,
		Data:        map[string]interface{}{"request_id": pending.ID},
	}); err != nil {
		s.logger.Warn("failed to queue decision notice", "request_id", pending.ID, "error", err)
	}

	return resp, nil
}

// ListPending implements offpremises.Service.
func (s *ServiceImpl) ListPending(ctx context.Context) ([]offpremises.RequestResponse, error) {
	actorID, err := userIDFromClaims(ctx)
	if err != nil {
		return nil, err
	}

	actor, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load approver profile: %w", err)
	}
	if !actor.IsManager() {
		return nil, user.ErrManagerAccessRequired
	}

	scope := offpremises.ApproverScope{}
	switch actor.Role {
	case user.RoleAdmin:
		scope.All = true
	case user.RoleRegionalManager:
		scope.LocationIDs = actor.LocationIDs
	case user.RoleDepartmentHead:
		scope.DepartmentID = actor.DepartmentID
	}

	pending, err := s.repo.ListPendingForApprover(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	responses := make([]offpremises.RequestResponse, 0, len(pending))
	for _, p := range pending {
		responses = append(responses, mapRequestToResponse(p))
	}
	return responses, nil
}

func mapRequestToResponse(p offpremises.PendingCheckin) offpremises.RequestResponse {
	resp := offpremises.RequestResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		UserName:       p.UserName,
		DepartmentName: p.DepartmentName,
		LocationName:   p.LocationName,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		AccuracyMeters: p.AccuracyMeters,
		Reason:         p.Reason,
		Status:         p.Status,
		ApproverID:     p.ApproverID,
		Comments:       p.Comments,
		CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.DecidedAt != nil {
		decided := p.DecidedAt.Format("2006-01-02 15:04:05")
		resp.DecidedAt = &decided
	}
	return resp
}
