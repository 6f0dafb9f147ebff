package primary

import (
	"context"
	"time"
)

// EscalationEngine defines the primary port for evaluating open requests
// against their tenant's escalation policy.
type EscalationEngine interface {
	// Evaluate fires every stage that has come due for the open requests of one tenant.
	Evaluate(ctx context.Context, tenantID string, now time.Time) (*EvaluationResult, error)

	// EvaluateAll evaluates every tenant that has open requests.
	EvaluateAll(ctx context.Context, now time.Time) (*EvaluationResult, error)
}

// EvaluationResult summarizes one evaluation pass.
type EvaluationResult struct {
	Evaluated int               // open requests examined
	Fired     []FiredTransition // stages fired, in firing order
	Skipped   []string          // tenants skipped because another evaluator held their lease
}

// FiredTransition is one stage firing at the port boundary.
type FiredTransition struct {
	RequestID      string
	TenantID       string
	Stage          string
	FiredAt        time.Time
	ElapsedSeconds int
}

// Merge appends other's outcome to r.
func (r *EvaluationResult) Merge(other *EvaluationResult) {
	if other == nil {
		return
	}
	r.Evaluated += other.Evaluated
	r.Fired = append(r.Fired, other.Fired...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}
