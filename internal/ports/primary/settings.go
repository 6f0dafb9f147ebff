package primary

import (
	"context"
	"time"

	"github.com/example/bellhop/internal/core/policy"
)

// SettingsService defines the primary port for escalation policy configuration.
// Every mutation validates, persists and returns the resulting policy.
type SettingsService interface {
	// GetPolicy returns the tenant's policy, or the default preset if none was saved.
	GetPolicy(ctx context.Context, tenantID string) (*PolicySettings, error)

	// ApplyPreset replaces the tenant's policy with a named preset.
	ApplyPreset(ctx context.Context, tenantID, preset string) (*PolicySettings, error)

	// UpdateField sets one field (e.g. "reminder.afterSeconds") and marks the policy custom.
	UpdateField(ctx context.Context, tenantID, path string, value any) (*PolicySettings, error)

	// ToggleStage enables or disables one stage and marks the policy custom.
	ToggleStage(ctx context.Context, tenantID, stage string, enabled bool) (*PolicySettings, error)

	// ReplacePolicy stores a complete policy as sent by the settings screen.
	ReplacePolicy(ctx context.Context, tenantID string, p policy.Policy) (*PolicySettings, error)
}

// PolicySettings is a tenant's policy at the port boundary.
type PolicySettings struct {
	TenantID  string
	Policy    policy.Policy
	Version   int // 0 when the policy is the unsaved default
	UpdatedAt time.Time
	Warnings  []string // non-fatal findings, e.g. out-of-order delays
}
