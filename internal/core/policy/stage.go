// Package policy contains the pure business logic for per-tenant escalation policies.
// This is part of the Functional Core - no I/O, only pure functions.
package policy

import (
	"errors"
	"fmt"
)

// ErrUnknownChannel is returned for a delivery channel name outside the catalog.
var ErrUnknownChannel = errors.New("unknown channel")

// Stage identifies one escalation step.
type Stage string

const (
	StageReminder      Stage = "reminder"
	StageEscalation    Stage = "escalation"
	StageAutoReassign  Stage = "auto_reassign"
	StageCriticalAlert Stage = "critical_alert"

	// StageAcknowledged marks the handler's first response in the transition log.
	// It is never scheduled by a policy.
	StageAcknowledged Stage = "acknowledged"
)

// Stages is the fixed firing order.
var Stages = []Stage{StageReminder, StageEscalation, StageAutoReassign, StageCriticalAlert}

// Index returns the position of s in the firing order, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStage accepts the canonical stage name or its camelCase form.
func ParseStage(name string) (Stage, error) {
	switch name {
	case "reminder":
		return StageReminder, nil
	case "escalation":
		return StageEscalation, nil
	case "auto_reassign", "autoReassign":
		return StageAutoReassign, nil
	case "critical_alert", "criticalAlert":
		return StageCriticalAlert, nil
	case "acknowledged":
		return StageAcknowledged, nil
	}
	return "", fmt.Errorf("unknown stage %q", name)
}

// Channel is a notification channel.
type Channel string

const (
	ChannelPush      Channel = "push"
	ChannelSMS       Channel = "sms"
	ChannelEmail     Channel = "email"
	ChannelDashboard Channel = "dashboard"
)

// ParseChannel validates a channel name.
func ParseChannel(name string) (Channel, error) {
	switch Channel(name) {
	case ChannelPush, ChannelSMS, ChannelEmail, ChannelDashboard:
		return Channel(name), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownChannel, name)
}
