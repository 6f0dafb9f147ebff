// Package escalation plans the side effects of each escalation stage.
// This is part of the Functional Core - no I/O, only pure functions.
// The planner takes pre-fetched external facts (supervisors, replacement handler)
// and returns effects for the shell to execute.
package escalation

import (
	"fmt"
	"time"

	"github.com/example/bellhop/internal/core/effects"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
)

// DashboardTarget is the notification address of a tenant's backoffice dashboard.
func DashboardTarget(tenantID string) string {
	return "dashboard:" + tenantID
}

// StageContext is the input to PlanStage.
type StageContext struct {
	Request     request.ServiceRequest
	Policy      policy.Policy
	Stage       policy.Stage
	Now         time.Time
	Supervisors []string // supervisor handler ids for the escalation stage
	NewHandler  string   // replacement handler for auto-reassign, empty when nobody is available
}

// PlanStage returns the side effects for firing ctx.Stage.
func PlanStage(ctx StageContext) []effects.Effect {
	req := ctx.Request
	payload := effects.Payload{
		RequestID:      req.ID,
		TenantID:       req.TenantID,
		Stage:          ctx.Stage,
		ElapsedSeconds: int(req.Elapsed(ctx.Now) / time.Second),
	}

	switch ctx.Stage {
	case policy.StageReminder:
		return planReminder(req, payload)
	case policy.StageEscalation:
		return planEscalation(ctx, payload)
	case policy.StageAutoReassign:
		return planAutoReassign(ctx, payload)
	case policy.StageCriticalAlert:
		payload.Message = fmt.Sprintf("CRITICAL: request %s unanswered for %s", req.ID, FormatSeconds(payload.ElapsedSeconds))
		payload.Urgent = true
		payload.Sound = ctx.Policy.CriticalAlert.Sound
		return []effects.Effect{effects.BroadcastEffect{Payload: payload}}
	}
	return []effects.Effect{effects.NoEffect{}}
}

// PlanOpened returns the base notifications sent when a request is opened.
// They are always on and independent of the policy.
func PlanOpened(req request.ServiceRequest) []effects.Effect {
	payload := effects.Payload{
		RequestID: req.ID,
		TenantID:  req.TenantID,
		Message:   fmt.Sprintf("New request %s", req.ID),
	}
	var out []effects.Effect
	if req.AssignedHandlerID != "" {
		out = append(out, effects.NotifyEffect{Channel: req.Channel, Target: req.AssignedHandlerID, Payload: payload})
	}
	out = append(out, effects.NotifyEffect{Channel: policy.ChannelDashboard, Target: DashboardTarget(req.TenantID), Payload: payload})
	return out
}

func planReminder(req request.ServiceRequest, payload effects.Payload) []effects.Effect {
	if req.AssignedHandlerID == "" {
		return []effects.Effect{effects.LogEffect{
			Level:   "warn",
			Message: "reminder skipped: request has no assigned handler",
			Fields:  map[string]any{"request_id": req.ID, "tenant_id": req.TenantID},
		}}
	}
	payload.Message = fmt.Sprintf("Reminder: request %s is still waiting (%s)", req.ID, FormatSeconds(payload.ElapsedSeconds))
	return []effects.Effect{effects.NotifyEffect{
		Channel: req.Channel,
		Target:  req.AssignedHandlerID,
		Payload: payload,
	}}
}

func planEscalation(ctx StageContext, payload effects.Payload) []effects.Effect {
	req := ctx.Request
	payload.Message = fmt.Sprintf("Request %s unhandled for %s", req.ID, FormatSeconds(payload.ElapsedSeconds))

	channels := ctx.Policy.Escalation.Channels()
	if len(channels) == 0 {
		return []effects.Effect{effects.LogEffect{
			Level:   "info",
			Message: "escalation fired with no channels enabled",
			Fields:  map[string]any{"request_id": req.ID, "tenant_id": req.TenantID},
		}}
	}
	if len(ctx.Supervisors) == 0 {
		return []effects.Effect{effects.LogEffect{
			Level:   "warn",
			Message: "escalation fired but tenant has no supervisor",
			Fields:  map[string]any{"request_id": req.ID, "tenant_id": req.TenantID},
		}}
	}

	var out []effects.Effect
	for _, supervisor := range ctx.Supervisors {
		for _, ch := range channels {
			out = append(out, effects.NotifyEffect{Channel: ch, Target: supervisor, Payload: payload})
		}
	}
	return out
}

func planAutoReassign(ctx StageContext, payload effects.Payload) []effects.Effect {
	req := ctx.Request
	if ctx.NewHandler == "" {
		return []effects.Effect{effects.LogEffect{
			Level:   "warn",
			Message: "auto-reassign: no handler available",
			Fields:  map[string]any{"request_id": req.ID, "tenant_id": req.TenantID, "handler_id": req.AssignedHandlerID},
		}}
	}
	payload.Message = fmt.Sprintf("Request %s reassigned to you", req.ID)
	return []effects.Effect{
		effects.ReassignEffect{RequestID: req.ID, FromHandler: req.AssignedHandlerID, ToHandler: ctx.NewHandler},
		effects.NotifyEffect{Channel: req.Channel, Target: ctx.NewHandler, Payload: payload},
	}
}

// FormatSeconds renders seconds as "45 sec", "3 min" or "2 min 30 sec".
func FormatSeconds(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%d sec", seconds)
	}
	mins, secs := seconds/60, seconds%60
	if secs > 0 {
		return fmt.Sprintf("%d min %d sec", mins, secs)
	}
	return fmt.Sprintf("%d min", mins)
}
