package request

import (
	"time"

	"github.com/example/bellhop/internal/core/policy"
)

// Transition records one fired stage, or the acknowledgment, of one request.
// Immutable once written; at most one per (RequestID, Stage).
type Transition struct {
	ID             string
	RequestID      string
	TenantID       string
	Stage          policy.Stage
	FiredAt        time.Time
	ElapsedSeconds int
}

// NewTransition builds the record for firing stage on r at firedAt.
func NewTransition(id string, r ServiceRequest, stage policy.Stage, firedAt time.Time) Transition {
	return Transition{
		ID:             id,
		RequestID:      r.ID,
		TenantID:       r.TenantID,
		Stage:          stage,
		FiredAt:        firedAt,
		ElapsedSeconds: int(r.Elapsed(firedAt) / time.Second),
	}
}
