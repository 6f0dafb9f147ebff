package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/escalation"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/core/timer"
	"github.com/example/bellhop/internal/logging"
	"github.com/example/bellhop/internal/metrics"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// EngineOptions tune the escalation engine.
type EngineOptions struct {
	// DefaultPreset applies to tenants that never saved a policy.
	DefaultPreset policy.Preset
	// LeaseTTL bounds how long one evaluator may hold a tenant.
	LeaseTTL time.Duration
}

// EscalationEngineImpl implements the EscalationEngine interface.
//
// Each pass re-reads the tenant's policy, so policy edits apply from the next
// pass on. Stage firing is claimed in the transition log before any side effect
// runs; the claim only succeeds while the request is open and the stage has not
// fired, which makes firing at-most-once across concurrent evaluators and
// lets an acknowledgment win over a pending stage.
type EscalationEngineImpl struct {
	policyRepo     secondary.PolicyRepository
	requestRepo    secondary.RequestRepository
	transitionRepo secondary.TransitionRepository
	staffRepo      secondary.StaffRepository
	locker         secondary.Locker
	executor       EffectExecutor
	logger         *zap.Logger
	opts           EngineOptions
	newID          func() string
}

// NewEscalationEngine creates a new EscalationEngine with injected dependencies.
func NewEscalationEngine(
	policyRepo secondary.PolicyRepository,
	requestRepo secondary.RequestRepository,
	transitionRepo secondary.TransitionRepository,
	staffRepo secondary.StaffRepository,
	locker secondary.Locker,
	executor EffectExecutor,
	logger *zap.Logger,
	opts EngineOptions,
) *EscalationEngineImpl {
	if opts.DefaultPreset == "" {
		opts.DefaultPreset = policy.PresetStandard
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationEngineImpl{
		policyRepo:     policyRepo,
		requestRepo:    requestRepo,
		transitionRepo: transitionRepo,
		staffRepo:      staffRepo,
		locker:         locker,
		executor:       executor,
		logger:         logger,
		opts:           opts,
		newID:          uuid.NewString,
	}
}

// EvaluateAll evaluates every tenant that has open requests.
// A failing tenant does not stop the others.
func (e *EscalationEngineImpl) EvaluateAll(ctx context.Context, now time.Time) (*primary.EvaluationResult, error) {
	start := time.Now()
	defer func() { metrics.EvaluationDuration.Observe(time.Since(start).Seconds()) }()

	tenants, err := e.requestRepo.ListTenantsWithOpenRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	result := &primary.EvaluationResult{}
	var errs []error
	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		tenantResult, err := e.Evaluate(ctx, tenantID, now)
		result.Merge(tenantResult)
		if err != nil {
			e.logger.Error("tenant evaluation failed", zap.String("tenant_id", tenantID), zap.Error(err))
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}

	metrics.EvaluatedRequests.Set(float64(result.Evaluated))
	return result, errors.Join(errs...)
}

// Evaluate fires every due stage of the tenant's open requests.
func (e *EscalationEngineImpl) Evaluate(ctx context.Context, tenantID string, now time.Time) (*primary.EvaluationResult, error) {
	lease, ok, err := e.locker.TryAcquire(ctx, "tenant:"+tenantID, e.opts.LeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire evaluation lease: %w", err)
	}
	if !ok {
		metrics.LeaseSkips.Inc()
		e.logger.Debug("tenant evaluation skipped: lease held elsewhere", zap.String("tenant_id", tenantID))
		return &primary.EvaluationResult{Skipped: []string{tenantID}}, nil
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release evaluation lease", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}()

	pol, err := e.loadPolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := e.requestRepo.List(ctx, secondary.RequestFilters{TenantID: tenantID, Status: string(request.StatusOpen)})
	if err != nil {
		return nil, fmt.Errorf("failed to list open requests: %w", err)
	}

	reqs := make([]request.ServiceRequest, 0, len(records))
	for _, rec := range records {
		transitions, err := e.transitionRepo.ListByRequest(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transitions of %s: %w", rec.ID, err)
		}
		reqs = append(reqs, recordToRequest(rec, transitions))
	}

	return e.EvaluateRequests(ctx, reqs, pol, now)
}

// EvaluateRequests fires the due stages of reqs under pol.
// Requests that are not open are counted but never fire.
func (e *EscalationEngineImpl) EvaluateRequests(ctx context.Context, reqs []request.ServiceRequest, pol policy.Policy, now time.Time) (*primary.EvaluationResult, error) {
	result := &primary.EvaluationResult{Evaluated: len(reqs)}
	var errs []error
	for _, req := range reqs {
		fired, err := e.evaluateRequest(ctx, req, pol, now)
		result.Fired = append(result.Fired, fired...)
		if err != nil {
			errs = append(errs, fmt.Errorf("request %s: %w", req.ID, err))
		}
	}
	return result, errors.Join(errs...)
}

// evaluateRequest drains the due stages of one request, one claim at a time.
func (e *EscalationEngineImpl) evaluateRequest(ctx context.Context, req request.ServiceRequest, pol policy.Policy, now time.Time) ([]primary.FiredTransition, error) {
	var fired []primary.FiredTransition
	for {
		stage, due := timer.DueStage(req, pol, now)
		if !due {
			return fired, nil
		}

		tr := request.NewTransition(e.newID(), req, stage, now)
		won, err := e.transitionRepo.Claim(ctx, tr)
		if err != nil {
			return fired, err
		}

		next, markErr := req.WithFired(stage)
		if markErr != nil {
			return fired, markErr
		}
		req = next

		if !won {
			open, err := e.stillOpen(ctx, req.ID)
			if err != nil || !open {
				return fired, err
			}
			metrics.DuplicateClaims.WithLabelValues(string(stage)).Inc()
			e.logger.Debug("stage already fired by another evaluator",
				zap.String("tenant_id", req.TenantID), zap.String("request_id", req.ID), zap.String("stage", string(stage)))
			continue
		}

		metrics.StagesFired.WithLabelValues(string(stage)).Inc()
		e.logger.Info("stage fired", append(logging.Request(req.TenantID, req.ID),
			zap.String("stage", string(stage)),
			zap.Int("elapsed_seconds", tr.ElapsedSeconds))...)
		fired = append(fired, transitionToPrimary(tr))

		effs, err := e.planStage(ctx, req, pol, stage, now)
		if err != nil {
			// The stage is recorded; it will not be retried.
			e.logger.Error("failed to plan stage effects",
				zap.String("request_id", req.ID), zap.String("stage", string(stage)), zap.Error(err))
			continue
		}
		if err := e.executor.Execute(ctx, effs); err != nil {
			e.logger.Error("failed to execute stage effects",
				zap.String("request_id", req.ID), zap.String("stage", string(stage)), zap.Error(err))
			continue
		}
		for _, eff := range effs {
			if reassign, ok := eff.(effects.ReassignEffect); ok {
				req = req.Reassign(reassign.ToHandler)
			}
		}
	}
}

// planStage fetches the external facts a stage needs and plans its effects.
func (e *EscalationEngineImpl) planStage(ctx context.Context, req request.ServiceRequest, pol policy.Policy, stage policy.Stage, now time.Time) ([]effects.Effect, error) {
	sc := escalation.StageContext{Request: req, Policy: pol, Stage: stage, Now: now}

	switch stage {
	case policy.StageEscalation:
		supervisors, err := e.staffRepo.Supervisors(ctx, req.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up supervisors: %w", err)
		}
		sc.Supervisors = supervisors
	case policy.StageAutoReassign:
		handler, err := e.staffRepo.PickAvailable(ctx, req.TenantID, req.AssignedHandlerID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to look up available handler: %w", err)
		}
		sc.NewHandler = handler
		if handler == "" {
			metrics.ReassignNoHandler.Inc()
		}
	}

	return escalation.PlanStage(sc), nil
}

func (e *EscalationEngineImpl) stillOpen(ctx context.Context, requestID string) (bool, error) {
	rec, err := e.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return false, err
	}
	return rec.Status == string(request.StatusOpen), nil
}

// loadPolicy returns the tenant's stored policy, or the default preset.
func (e *EscalationEngineImpl) loadPolicy(ctx context.Context, tenantID string) (policy.Policy, error) {
	rec, err := e.policyRepo.Get(ctx, tenantID)
	if errors.Is(err, secondary.ErrNotFound) {
		return policy.Resolve(e.opts.DefaultPreset)
	}
	if err != nil {
		return policy.Policy{}, fmt.Errorf("failed to load policy: %w", err)
	}
	return rec.Policy, nil
}

// Ensure EscalationEngineImpl implements the interface
var _ primary.EscalationEngine = (*EscalationEngineImpl)(nil)
