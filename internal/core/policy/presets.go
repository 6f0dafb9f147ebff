package policy

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when a preset name is not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset names a bundled policy.
type Preset string

const (
	PresetMinimal  Preset = "minimal"
	PresetSoft     Preset = "soft"
	PresetStandard Preset = "standard"
	PresetStrict   Preset = "strict"

	// PresetCustom marks a policy edited field by field. It has no stored bundle.
	PresetCustom Preset = "custom"
)

// PresetInfo is the display metadata of a preset.
type PresetInfo struct {
	Name        Preset
	Title       string
	Description string
}

var presetInfo = []PresetInfo{
	{PresetMinimal, "Minimal", "No reminders or escalation. The team is trusted to respond."},
	{PresetSoft, "Soft", "Reminder only, after 3 minutes."},
	{PresetStandard, "Standard", "Reminder plus manager notification if the request is still unhandled."},
	{PresetStrict, "Strict", "Tight timings, automatic reassignment and critical alerts."},
	{PresetCustom, "Custom", "Custom configuration."},
}

// PresetNames returns the resolvable presets in catalog order (custom excluded).
func PresetNames() []Preset {
	return []Preset{PresetMinimal, PresetSoft, PresetStandard, PresetStrict}
}

// Describe returns the display metadata for a preset, including custom.
func Describe(name Preset) (PresetInfo, bool) {
	for _, info := range presetInfo {
		if info.Name == name {
			return info, true
		}
	}
	return PresetInfo{}, false
}

// ParsePreset validates a preset name, accepting custom.
func ParsePreset(name string) (Preset, error) {
	if _, ok := Describe(Preset(name)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return Preset(name), nil
}

// Resolve returns the policy bundled under a preset name.
// Custom is a derived marker and does not resolve.
func Resolve(name Preset) (Policy, error) {
	switch name {
	case PresetMinimal:
		return Policy{
			ActivePreset:  PresetMinimal,
			Reminder:      Reminder{AfterSeconds: 180},
			Escalation:    Escalation{AfterSeconds: 300},
			AutoReassign:  AutoReassign{AfterSeconds: 600},
			CriticalAlert: CriticalAlert{AfterSeconds: 900},
		}, nil
	case PresetSoft:
		return Policy{
			ActivePreset:  PresetSoft,
			Reminder:      Reminder{Enabled: true, AfterSeconds: 180},
			Escalation:    Escalation{AfterSeconds: 300},
			AutoReassign:  AutoReassign{AfterSeconds: 600},
			CriticalAlert: CriticalAlert{AfterSeconds: 900},
		}, nil
	case PresetStandard:
		return Policy{
			ActivePreset: PresetStandard,
			Reminder:     Reminder{Enabled: true, AfterSeconds: 180},
			Escalation: Escalation{
				Enabled:      true,
				AfterSeconds: 300,
				NotifyPush:   true,
				NotifyEmail:  true,
			},
			AutoReassign:  AutoReassign{AfterSeconds: 600},
			CriticalAlert: CriticalAlert{AfterSeconds: 900},
		}, nil
	case PresetStrict:
		return Policy{
			ActivePreset: PresetStrict,
			Reminder:     Reminder{Enabled: true, AfterSeconds: 60},
			Escalation: Escalation{
				Enabled:      true,
				AfterSeconds: 180,
				NotifyPush:   true,
				NotifySMS:    true,
				NotifyEmail:  true,
			},
			AutoReassign:  AutoReassign{Enabled: true, AfterSeconds: 300},
			CriticalAlert: CriticalAlert{Enabled: true, AfterSeconds: 600, Sound: true},
		}, nil
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// MustResolve is Resolve for names known at compile time. It panics on an unknown name.
func MustResolve(name Preset) Policy {
	p, err := Resolve(name)
	if err != nil {
		panic(err)
	}
	return p
}
