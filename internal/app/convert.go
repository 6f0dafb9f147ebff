package app

import (
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/ports/secondary"
)

// recordToRequest rebuilds the tagged request state from a stored row and its transition log.
func recordToRequest(rec *secondary.RequestRecord, transitions []request.Transition) request.ServiceRequest {
	req := request.New(rec.ID, rec.TenantID, policy.Channel(rec.Channel), rec.AssignedHandlerID, rec.CreatedAt)

	switch request.Status(rec.Status) {
	case request.StatusAcknowledged:
		req.State = request.Acknowledged{By: rec.AcknowledgedBy, At: rec.AcknowledgedAt}
	case request.StatusClosed:
		req.State = request.Closed{At: rec.ClosedAt}
	default:
		var fired []policy.Stage
		for _, tr := range transitions {
			if tr.Stage.Index() >= 0 {
				fired = append(fired, tr.Stage)
			}
		}
		req.State = request.Open{StagesFired: fired}
	}
	return req
}

func recordToPrimaryRequest(rec *secondary.RequestRecord, transitions []request.Transition) *primary.ServiceRequest {
	out := &primary.ServiceRequest{
		ID:                rec.ID,
		TenantID:          rec.TenantID,
		Channel:           rec.Channel,
		AssignedHandlerID: rec.AssignedHandlerID,
		Status:            rec.Status,
		CreatedAt:         rec.CreatedAt,
		AcknowledgedBy:    rec.AcknowledgedBy,
		AcknowledgedAt:    rec.AcknowledgedAt,
		ClosedAt:          rec.ClosedAt,
	}
	for _, tr := range transitions {
		if tr.Stage.Index() >= 0 {
			out.StagesFired = append(out.StagesFired, string(tr.Stage))
		}
	}
	return out
}

func transitionToPrimary(tr request.Transition) primary.FiredTransition {
	return primary.FiredTransition{
		RequestID:      tr.RequestID,
		TenantID:       tr.TenantID,
		Stage:          string(tr.Stage),
		FiredAt:        tr.FiredAt,
		ElapsedSeconds: tr.ElapsedSeconds,
	}
}
