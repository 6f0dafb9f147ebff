// Package timer decides which escalation stage is due for a request.
// This is part of the Functional Core - no I/O, only pure functions.
package timer

import (
	"time"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
)

// DueStage returns the first stage, in firing order, that is enabled, not yet
// fired for req, and whose delay has elapsed at now. At most one stage is
// returned per call; callers drain by calling again after recording it.
// Returns false for non-open requests or when nothing is due.
func DueStage(req request.ServiceRequest, pol policy.Policy, now time.Time) (policy.Stage, bool) {
	if !req.IsOpen() {
		return "", false
	}
	elapsed := req.Elapsed(now)
	for _, s := range policy.Stages {
		enabled, after := pol.StageConfig(s)
		if !enabled || req.HasFired(s) {
			continue
		}
		if elapsed >= seconds(after) {
			return s, true
		}
	}
	return "", false
}

// Next describes the upcoming stage of an open request.
type Next struct {
	Stage     policy.Stage
	DueAt     time.Time
	Remaining time.Duration // zero when already due
}

// NextDue returns the earliest-due enabled stage that has not fired yet,
// with the time remaining until it is due. Returns false when nothing is pending.
func NextDue(req request.ServiceRequest, pol policy.Policy, now time.Time) (Next, bool) {
	if !req.IsOpen() {
		return Next{}, false
	}
	if s, ok := DueStage(req, pol, now); ok {
		_, after := pol.StageConfig(s)
		return Next{Stage: s, DueAt: req.CreatedAt.Add(seconds(after))}, true
	}

	var (
		best  Next
		found bool
	)
	for _, s := range policy.Stages {
		enabled, after := pol.StageConfig(s)
		if !enabled || req.HasFired(s) {
			continue
		}
		dueAt := req.CreatedAt.Add(seconds(after))
		if !found || dueAt.Before(best.DueAt) {
			best = Next{Stage: s, DueAt: dueAt, Remaining: dueAt.Sub(now)}
			found = true
		}
	}
	return best, found
}

// Pending returns every enabled, unfired stage in firing order.
func Pending(req request.ServiceRequest, pol policy.Policy) []policy.Stage {
	if !req.IsOpen() {
		return nil
	}
	var out []policy.Stage
	for _, s := range pol.EnabledStages() {
		if !req.HasFired(s) {
			out = append(out, s)
		}
	}
	return out
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
