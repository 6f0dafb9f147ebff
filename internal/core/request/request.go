// Package request models a customer-initiated, staff-actionable service request.
// This is part of the Functional Core - no I/O, only pure functions.
package request

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/bellhop/internal/core/policy"
)

var (
	// ErrNotOpen is returned when an operation requires an open request.
	ErrNotOpen = errors.New("request is not open")
	// ErrClosed is returned for any transition out of closed.
	ErrClosed = errors.New("request is closed")
)

// Status is the coarse lifecycle status stored with a request.
type Status string

const (
	StatusOpen         Status = "open"
	StatusAcknowledged Status = "acknowledged"
	StatusClosed       Status = "closed"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusAcknowledged, StatusClosed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// State is the lifecycle state of a request. Only Open carries fired stages,
// so a fired stage on an acknowledged or closed request cannot be expressed.
type State interface {
	Status() Status
	isState()
}

// Open is awaiting a handler. StagesFired is in firing order.
type Open struct {
	StagesFired []policy.Stage
}

// Acknowledged means a handler responded. Escalation stops here.
type Acknowledged struct {
	By string
	At time.Time
}

// Closed means the request was fulfilled or cancelled.
type Closed struct {
	At time.Time
}

func (Open) Status() Status         { return StatusOpen }
func (Acknowledged) Status() Status { return StatusAcknowledged }
func (Closed) Status() Status       { return StatusClosed }

func (Open) isState()         {}
func (Acknowledged) isState() {}
func (Closed) isState()       {}

// ServiceRequest is the escalation engine's view of a request.
type ServiceRequest struct {
	ID                string
	TenantID          string
	Channel           policy.Channel // original delivery channel to the handler
	AssignedHandlerID string         // may be empty
	CreatedAt         time.Time
	State             State
}

// New returns an open request with no fired stages.
func New(id, tenantID string, channel policy.Channel, handlerID string, createdAt time.Time) ServiceRequest {
	if channel == "" {
		channel = policy.ChannelPush
	}
	return ServiceRequest{
		ID:                id,
		TenantID:          tenantID,
		Channel:           channel,
		AssignedHandlerID: handlerID,
		CreatedAt:         createdAt,
		State:             Open{},
	}
}

// Status returns the current lifecycle status.
func (r ServiceRequest) Status() Status {
	if r.State == nil {
		return StatusOpen
	}
	return r.State.Status()
}

// IsOpen reports whether escalation still applies.
func (r ServiceRequest) IsOpen() bool {
	return r.Status() == StatusOpen
}

// StagesFired returns the fired stages, empty unless open.
func (r ServiceRequest) StagesFired() []policy.Stage {
	if open, ok := r.State.(Open); ok {
		return open.StagesFired
	}
	return nil
}

// HasFired reports whether a stage already fired for this request.
func (r ServiceRequest) HasFired(s policy.Stage) bool {
	for _, fired := range r.StagesFired() {
		if fired == s {
			return true
		}
	}
	return false
}

// Elapsed returns the time since creation, never negative.
func (r ServiceRequest) Elapsed(now time.Time) time.Duration {
	d := now.Sub(r.CreatedAt)
	if d < 0 {
		return 0
	}
	return d
}

// WithFired returns a copy with s appended to the fired stages.
// Firing an already-fired stage is a no-op; firing on a non-open request is an error.
func (r ServiceRequest) WithFired(s policy.Stage) (ServiceRequest, error) {
	open, ok := r.State.(Open)
	if !ok && r.State != nil {
		return r, fmt.Errorf("%w: %s is %s", ErrNotOpen, r.ID, r.Status())
	}
	if r.HasFired(s) {
		return r, nil
	}
	fired := make([]policy.Stage, 0, len(open.StagesFired)+1)
	fired = append(fired, open.StagesFired...)
	fired = append(fired, s)
	r.State = Open{StagesFired: fired}
	return r, nil
}

// Reassign returns a copy assigned to handlerID.
func (r ServiceRequest) Reassign(handlerID string) ServiceRequest {
	r.AssignedHandlerID = handlerID
	return r
}
