package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField is returned by UpdateField for a path that names no policy field.
	ErrUnknownField = errors.New("unknown policy field")
	// ErrInvalidValue is returned when a field value has the wrong type or range.
	ErrInvalidValue = errors.New("invalid policy value")
)

// Reminder re-notifies the originally assigned handler.
type Reminder struct {
	Enabled      bool `json:"enabled"`
	AfterSeconds int  `json:"afterSeconds"`
}

// Escalation notifies a supervisor on each enabled channel.
type Escalation struct {
	Enabled      bool `json:"enabled"`
	AfterSeconds int  `json:"afterSeconds"`
	NotifyPush   bool `json:"notifyPush"`
	NotifySMS    bool `json:"notifySms"`
	NotifyEmail  bool `json:"notifyEmail"`
}

// Channels returns the enabled supervisor channels in push, sms, email order.
func (e Escalation) Channels() []Channel {
	var out []Channel
	if e.NotifyPush {
		out = append(out, ChannelPush)
	}
	if e.NotifySMS {
		out = append(out, ChannelSMS)
	}
	if e.NotifyEmail {
		out = append(out, ChannelEmail)
	}
	return out
}

// AutoReassign hands the request to another available handler.
type AutoReassign struct {
	Enabled      bool `json:"enabled"`
	AfterSeconds int  `json:"afterSeconds"`
}

// CriticalAlert broadcasts to every staff device.
type CriticalAlert struct {
	Enabled      bool `json:"enabled"`
	AfterSeconds int  `json:"afterSeconds"`
	Sound        bool `json:"sound"`
}

// Policy is the escalation configuration of one tenant.
type Policy struct {
	ActivePreset  Preset        `json:"activePreset"`
	Reminder      Reminder      `json:"reminder"`
	Escalation    Escalation    `json:"escalation"`
	AutoReassign  AutoReassign  `json:"autoReassign"`
	CriticalAlert CriticalAlert `json:"criticalAlert"`
}

// StageConfig returns whether a stage is enabled and its delay.
func (p Policy) StageConfig(s Stage) (enabled bool, afterSeconds int) {
	switch s {
	case StageReminder:
		return p.Reminder.Enabled, p.Reminder.AfterSeconds
	case StageEscalation:
		return p.Escalation.Enabled, p.Escalation.AfterSeconds
	case StageAutoReassign:
		return p.AutoReassign.Enabled, p.AutoReassign.AfterSeconds
	case StageCriticalAlert:
		return p.CriticalAlert.Enabled, p.CriticalAlert.AfterSeconds
	}
	return false, 0
}

// EnabledStages returns the enabled stages in firing order.
func (p Policy) EnabledStages() []Stage {
	var out []Stage
	for _, s := range Stages {
		if enabled, _ := p.StageConfig(s); enabled {
			out = append(out, s)
		}
	}
	return out
}

// Reconcile keeps a preset label only while the values still equal that
// preset's bundle; any other labelled policy becomes custom. Unknown labels
// are returned unchanged so Validate rejects them.
func Reconcile(p Policy) Policy {
	if _, ok := Describe(p.ActivePreset); !ok {
		return p
	}
	if bundle, err := Resolve(p.ActivePreset); err == nil && bundle == p {
		return p
	}
	p.ActivePreset = PresetCustom
	return p
}

// ApplyPreset replaces the whole policy with the named preset.
// Applying PresetCustom is a no-op: custom only results from manual edits.
func ApplyPreset(current Policy, name Preset) (Policy, error) {
	if name == PresetCustom {
		return current, nil
	}
	return Resolve(name)
}

// UpdateField sets one field addressed by a dotted path such as
// "reminder.afterSeconds" or "escalation.notifySms". The result is always
// marked custom. Values may be native (bool, int, float64 from JSON) or strings.
func UpdateField(current Policy, path string, value any) (Policy, error) {
	p := current
	section, field, ok := strings.Cut(normalizePath(path), ".")
	if !ok {
		return current, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}

	var err error
	switch section + "." + field {
	case "reminder.enabled":
		p.Reminder.Enabled, err = toBool(value)
	case "reminder.afterseconds":
		p.Reminder.AfterSeconds, err = toSeconds(value)
	case "escalation.enabled":
		p.Escalation.Enabled, err = toBool(value)
	case "escalation.afterseconds":
		p.Escalation.AfterSeconds, err = toSeconds(value)
	case "escalation.notifypush":
		p.Escalation.NotifyPush, err = toBool(value)
	case "escalation.notifysms":
		p.Escalation.NotifySMS, err = toBool(value)
	case "escalation.notifyemail":
		p.Escalation.NotifyEmail, err = toBool(value)
	case "autoreassign.enabled":
		p.AutoReassign.Enabled, err = toBool(value)
	case "autoreassign.afterseconds":
		p.AutoReassign.AfterSeconds, err = toSeconds(value)
	case "criticalalert.enabled":
		p.CriticalAlert.Enabled, err = toBool(value)
	case "criticalalert.afterseconds":
		p.CriticalAlert.AfterSeconds, err = toSeconds(value)
	case "criticalalert.sound":
		p.CriticalAlert.Sound, err = toBool(value)
	default:
		return current, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if err != nil {
		return current, fmt.Errorf("%s: %w", path, err)
	}

	p.ActivePreset = PresetCustom
	return p, nil
}

// ToggleStage enables or disables a stage. Same semantics as UpdateField.
func ToggleStage(current Policy, s Stage, enabled bool) (Policy, error) {
	if s.Index() < 0 {
		return current, fmt.Errorf("%w: stage %q", ErrUnknownField, s)
	}
	return UpdateField(current, string(s)+".enabled", enabled)
}

// normalizePath lowercases and strips separators so "auto_reassign.after_seconds"
// and "autoReassign.afterSeconds" address the same field.
func normalizePath(path string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(path)), "_", "")
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("%w: %v (%T) is not a boolean", ErrInvalidValue, v, v)
}

func toSeconds(v any) (int, error) {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("%w: %v is not a whole number of seconds", ErrInvalidValue, x)
		}
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number of seconds", ErrInvalidValue, x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not a number of seconds", ErrInvalidValue, v, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: delay must not be negative (got %d)", ErrInvalidValue, n)
	}
	return n, nil
}
