package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// maxSaveAttempts bounds retries of a policy edit that lost a version race.
const maxSaveAttempts = 3

// SettingsServiceImpl implements the SettingsService interface.
type SettingsServiceImpl struct {
	policyRepo    secondary.PolicyRepository
	defaultPreset policy.Preset
	logger        *zap.Logger
	now           func() time.Time
}

// NewSettingsService creates a new SettingsService with injected dependencies.
func NewSettingsService(policyRepo secondary.PolicyRepository, defaultPreset policy.Preset, logger *zap.Logger) *SettingsServiceImpl {
	if defaultPreset == "" {
		defaultPreset = policy.PresetStandard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsServiceImpl{
		policyRepo:    policyRepo,
		defaultPreset: defaultPreset,
		logger:        logger,
		now:           time.Now,
	}
}

// GetPolicy returns the tenant's policy, or the unsaved default.
func (s *SettingsServiceImpl) GetPolicy(ctx context.Context, tenantID string) (*primary.PolicySettings, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	rec, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.recordToSettings(rec), nil
}

// ApplyPreset replaces the tenant's policy with a named preset.
func (s *SettingsServiceImpl) ApplyPreset(ctx context.Context, tenantID, preset string) (*primary.PolicySettings, error) {
	name, err := policy.ParsePreset(preset)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, func(current policy.Policy) (policy.Policy, error) {
		return policy.ApplyPreset(current, name)
	})
}

// UpdateField sets one field and marks the policy custom.
func (s *SettingsServiceImpl) UpdateField(ctx context.Context, tenantID, path string, value any) (*primary.PolicySettings, error) {
	return s.mutate(ctx, tenantID, func(current policy.Policy) (policy.Policy, error) {
		return policy.UpdateField(current, path, value)
	})
}

// ToggleStage enables or disables one stage and marks the policy custom.
func (s *SettingsServiceImpl) ToggleStage(ctx context.Context, tenantID, stage string, enabled bool) (*primary.PolicySettings, error) {
	st, err := policy.ParseStage(stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", policy.ErrUnknownField, err)
	}
	return s.mutate(ctx, tenantID, func(current policy.Policy) (policy.Policy, error) {
		return policy.ToggleStage(current, st, enabled)
	})
}

// ReplacePolicy stores a complete policy. The preset label is kept only when
// the values match that preset exactly, otherwise the policy is stored as custom.
func (s *SettingsServiceImpl) ReplacePolicy(ctx context.Context, tenantID string, p policy.Policy) (*primary.PolicySettings, error) {
	return s.mutate(ctx, tenantID, func(policy.Policy) (policy.Policy, error) {
		return policy.Reconcile(p), nil
	})
}

// mutate applies fn to the current policy and saves the result, re-reading
// and re-applying when another writer saved first.
func (s *SettingsServiceImpl) mutate(ctx context.Context, tenantID string, fn func(policy.Policy) (policy.Policy, error)) (*primary.PolicySettings, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	for attempt := 1; ; attempt++ {
		rec, err := s.load(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		next, err := fn(rec.Policy)
		if err != nil {
			return nil, err
		}
		if err := policy.Validate(next); err != nil {
			return nil, err
		}

		rec.Policy = next
		rec.UpdatedAt = s.now()
		err = s.policyRepo.Save(ctx, rec)
		if err == nil {
			s.logger.Info("escalation policy saved",
				zap.String("tenant_id", tenantID),
				zap.String("active_preset", string(next.ActivePreset)),
				zap.Int("version", rec.Version))
			return s.recordToSettings(rec), nil
		}
		if !errors.Is(err, secondary.ErrVersionConflict) || attempt >= maxSaveAttempts {
			return nil, err
		}
		s.logger.Debug("policy version conflict, retrying", zap.String("tenant_id", tenantID), zap.Int("attempt", attempt))
	}
}

// load returns the stored record, or a version-0 record holding the default preset.
func (s *SettingsServiceImpl) load(ctx context.Context, tenantID string) (*secondary.PolicyRecord, error) {
	rec, err := s.policyRepo.Get(ctx, tenantID)
	if errors.Is(err, secondary.ErrNotFound) {
		def, err := policy.Resolve(s.defaultPreset)
		if err != nil {
			return nil, err
		}
		return &secondary.PolicyRecord{TenantID: tenantID, Policy: def}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return rec, nil
}

func (s *SettingsServiceImpl) recordToSettings(rec *secondary.PolicyRecord) *primary.PolicySettings {
	return &primary.PolicySettings{
		TenantID:  rec.TenantID,
		Policy:    rec.Policy,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
		Warnings:  policy.OrderingWarnings(rec.Policy),
	}
}

// Ensure SettingsServiceImpl implements the interface
var _ primary.SettingsService = (*SettingsServiceImpl)(nil)
