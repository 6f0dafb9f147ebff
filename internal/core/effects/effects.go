// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "github.com/example/bellhop/internal/core/policy"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Payload is the notification body handed to delivery channels.
type Payload struct {
	RequestID      string       `json:"request_id"`
	TenantID       string       `json:"tenant_id"`
	Stage          policy.Stage `json:"stage,omitempty"`
	ElapsedSeconds int          `json:"elapsed_seconds"`
	Message        string       `json:"message"`
	Urgent         bool         `json:"urgent,omitempty"`
	Sound          bool         `json:"sound,omitempty"` // client renders the urgent audio cue
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// NotifyEffect sends a payload to one target over one channel.
type NotifyEffect struct {
	Channel policy.Channel
	Target  string // handler or supervisor id, or a dashboard address
	Payload Payload
}

func (e NotifyEffect) EffectType() string { return "notify" }

// BroadcastEffect reaches every staff device of a tenant.
type BroadcastEffect struct {
	Payload Payload
}

func (e BroadcastEffect) EffectType() string { return "broadcast" }

// ReassignEffect moves a request to another handler.
type ReassignEffect struct {
	RequestID   string
	FromHandler string // may be empty
	ToHandler   string
}

func (e ReassignEffect) EffectType() string { return "reassign" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
