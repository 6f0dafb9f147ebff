package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/escalation"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/core/timer"
	"github.com/example/bellhop/internal/logging"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// RequestServiceImpl implements the RequestService interface.
type RequestServiceImpl struct {
	requestRepo    secondary.RequestRepository
	transitionRepo secondary.TransitionRepository
	settings       primary.SettingsService
	executor       EffectExecutor
	logger         *zap.Logger
	now            func() time.Time
	newID          func() string
}

// NewRequestService creates a new RequestService with injected dependencies.
func NewRequestService(
	requestRepo secondary.RequestRepository,
	transitionRepo secondary.TransitionRepository,
	settings primary.SettingsService,
	executor EffectExecutor,
	logger *zap.Logger,
) *RequestServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestServiceImpl{
		requestRepo:    requestRepo,
		transitionRepo: transitionRepo,
		settings:       settings,
		executor:       executor,
		logger:         logger,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// OpenRequest registers a new open request and sends the base notifications.
func (s *RequestServiceImpl) OpenRequest(ctx context.Context, req primary.OpenRequestRequest) (*primary.ServiceRequest, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	channel := policy.ChannelPush
	if req.Channel != "" {
		ch, err := policy.ParseChannel(req.Channel)
		if err != nil {
			return nil, err
		}
		channel = ch
	}

	id := req.ID
	if id == "" {
		id = "REQ-" + s.newID()
	}
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	rec := &secondary.RequestRecord{
		ID:                id,
		TenantID:          req.TenantID,
		Channel:           string(channel),
		AssignedHandlerID: req.HandlerID,
		Status:            string(request.StatusOpen),
		CreatedAt:         createdAt,
	}
	if err := s.requestRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	opened := recordToRequest(rec, nil)
	if err := s.executor.Execute(ctx, escalation.PlanOpened(opened)); err != nil {
		s.logger.Error("failed to send base notifications", zap.String("request_id", id), zap.Error(err))
	}

	return recordToPrimaryRequest(rec, nil), nil
}

// Acknowledge records a handler's response. The acknowledgment is appended to
// the transition log so analytics can measure response time.
func (s *RequestServiceImpl) Acknowledge(ctx context.Context, requestID, handlerID string) (*primary.ServiceRequest, error) {
	rec, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.CanAcknowledge(request.Status(rec.Status)); err != nil {
		return nil, fmt.Errorf("cannot acknowledge %s: %w", requestID, err)
	}

	if handlerID == "" {
		handlerID = rec.AssignedHandlerID
	}
	at := s.now()

	if err := s.requestRepo.Acknowledge(ctx, requestID, handlerID, at); err != nil {
		if errors.Is(err, secondary.ErrStatusConflict) {
			return nil, fmt.Errorf("cannot acknowledge %s: %w", requestID, request.ErrNotOpen)
		}
		return nil, fmt.Errorf("failed to acknowledge request: %w", err)
	}

	// The acknowledgment already happened; a missing log entry only costs analytics.
	ack := request.NewTransition(s.newID(), recordToRequest(rec, nil), policy.StageAcknowledged, at)
	if _, err := s.transitionRepo.Record(ctx, ack); err != nil {
		s.logger.Error("failed to record acknowledgment transition", append(logging.Request(rec.TenantID, requestID),
			zap.Error(err))...)
	}

	s.logger.Info("request acknowledged", append(logging.Request(rec.TenantID, requestID),
		zap.String("handler_id", handlerID),
		zap.Int("elapsed_seconds", ack.ElapsedSeconds))...)

	return s.reload(ctx, requestID)
}

// Close closes an open or acknowledged request.
func (s *RequestServiceImpl) Close(ctx context.Context, requestID string) (*primary.ServiceRequest, error) {
	rec, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.CanClose(request.Status(rec.Status)); err != nil {
		return nil, fmt.Errorf("cannot close %s: %w", requestID, err)
	}

	if err := s.requestRepo.Close(ctx, requestID, s.now()); err != nil {
		if errors.Is(err, secondary.ErrStatusConflict) {
			return nil, fmt.Errorf("cannot close %s: %w", requestID, request.ErrClosed)
		}
		return nil, fmt.Errorf("failed to close request: %w", err)
	}

	return s.reload(ctx, requestID)
}

// GetRequest retrieves a request with its history and next scheduled stage.
func (s *RequestServiceImpl) GetRequest(ctx context.Context, requestID string) (*primary.RequestDetail, error) {
	rec, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	transitions, err := s.transitionRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}

	detail := &primary.RequestDetail{Request: recordToPrimaryRequest(rec, transitions)}
	for _, tr := range transitions {
		detail.Transitions = append(detail.Transitions, transitionToPrimary(tr))
	}

	if rec.Status == string(request.StatusOpen) {
		settings, err := s.settings.GetPolicy(ctx, rec.TenantID)
		if err != nil {
			return nil, err
		}
		if next, ok := timer.NextDue(recordToRequest(rec, transitions), settings.Policy, s.now()); ok {
			detail.NextStage = string(next.Stage)
			detail.NextDueAt = next.DueAt
		}
	}

	return detail, nil
}

// ListRequests lists requests with optional filters.
func (s *RequestServiceImpl) ListRequests(ctx context.Context, filters primary.RequestFilters) ([]*primary.ServiceRequest, error) {
	records, err := s.requestRepo.List(ctx, secondary.RequestFilters{
		TenantID: filters.TenantID,
		Status:   filters.Status,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	out := make([]*primary.ServiceRequest, len(records))
	for i, rec := range records {
		out[i] = recordToPrimaryRequest(rec, nil)
	}
	return out, nil
}

func (s *RequestServiceImpl) reload(ctx context.Context, requestID string) (*primary.ServiceRequest, error) {
	rec, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	transitions, err := s.transitionRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transitions: %w", err)
	}
	return recordToPrimaryRequest(rec, transitions), nil
}

// Ensure RequestServiceImpl implements the interface
var _ primary.RequestService = (*RequestServiceImpl)(nil)
