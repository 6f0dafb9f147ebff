package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/ports/secondary"
)

// TransitionRepository implements secondary.TransitionRepository with SQLite.
// UNIQUE(request_id, stage) on stage_transitions is what makes firing at-most-once
// across concurrent evaluators.
type TransitionRepository struct {
	db *sql.DB
}

// NewTransitionRepository creates a new SQLite transition repository.
func NewTransitionRepository(db *sql.DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

// Claim appends a transition if the stage has not fired and the request is still open.
func (r *TransitionRepository) Claim(ctx context.Context, tr request.Transition) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stage_transitions (id, request_id, tenant_id, stage, fired_at, elapsed_seconds)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM service_requests WHERE id = ? AND status = 'open')`,
		tr.ID, tr.RequestID, tr.TenantID, string(tr.Stage), tr.FiredAt.UTC(), tr.ElapsedSeconds,
		tr.RequestID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim stage %s: %w", tr.Stage, err)
	}
	return affectedOne(result)
}

// Record appends a transition regardless of request status.
func (r *TransitionRepository) Record(ctx context.Context, tr request.Transition) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stage_transitions (id, request_id, tenant_id, stage, fired_at, elapsed_seconds) VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.RequestID, tr.TenantID, string(tr.Stage), tr.FiredAt.UTC(), tr.ElapsedSeconds,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record transition: %w", err)
	}
	return affectedOne(result)
}

// ListByRequest returns a request's transitions in firing order.
func (r *TransitionRepository) ListByRequest(ctx context.Context, requestID string) ([]request.Transition, error) {
	return r.query(ctx,
		`SELECT id, request_id, tenant_id, stage, fired_at, elapsed_seconds FROM stage_transitions
		WHERE request_id = ? ORDER BY fired_at ASC, rowid ASC`,
		requestID,
	)
}

// ListInWindow returns a tenant's transitions fired within [start, end].
func (r *TransitionRepository) ListInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]request.Transition, error) {
	return r.query(ctx,
		`SELECT id, request_id, tenant_id, stage, fired_at, elapsed_seconds FROM stage_transitions
		WHERE tenant_id = ? AND fired_at >= ? AND fired_at <= ? ORDER BY fired_at ASC, rowid ASC`,
		tenantID, start.UTC(), end.UTC(),
	)
}

func (r *TransitionRepository) query(ctx context.Context, query string, args ...any) ([]request.Transition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var out []request.Transition
	for rows.Next() {
		var (
			tr    request.Transition
			stage string
		)
		if err := rows.Scan(&tr.ID, &tr.RequestID, &tr.TenantID, &stage, &tr.FiredAt, &tr.ElapsedSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		tr.Stage = policy.Stage(stage)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func affectedOne(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// Ensure TransitionRepository implements the interface
var _ secondary.TransitionRepository = (*TransitionRepository)(nil)
