package policy

import (
	"errors"
	"testing"
)

func TestResolve_AllPresets(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", name, err)
		}
		if p.ActivePreset != name {
			t.Errorf("Resolve(%q).ActivePreset = %q", name, p.ActivePreset)
		}
	}
}

func TestResolve_Minimal_DisablesEverything(t *testing.T) {
	p := MustResolve(PresetMinimal)
	if stages := p.EnabledStages(); len(stages) != 0 {
		t.Errorf("expected no enabled stages, got %v", stages)
	}
}

func TestResolve_Standard(t *testing.T) {
	p := MustResolve(PresetStandard)

	if !p.Reminder.Enabled || p.Reminder.AfterSeconds != 180 {
		t.Errorf("reminder = %+v, want enabled@180", p.Reminder)
	}
	if !p.Escalation.Enabled || p.Escalation.AfterSeconds != 300 {
		t.Errorf("escalation = %+v, want enabled@300", p.Escalation)
	}
	if !p.Escalation.NotifyPush || p.Escalation.NotifySMS || !p.Escalation.NotifyEmail {
		t.Errorf("escalation channels = %v, want [push email]", p.Escalation.Channels())
	}
	if p.AutoReassign.Enabled || p.CriticalAlert.Enabled {
		t.Error("standard must not enable auto-reassign or critical alert")
	}
}

func TestResolve_Strict_EnablesAllStages(t *testing.T) {
	p := MustResolve(PresetStrict)

	if got := len(p.EnabledStages()); got != 4 {
		t.Errorf("enabled stages = %d, want 4", got)
	}
	if !p.CriticalAlert.Sound {
		t.Error("strict must enable critical alert sound")
	}
	if len(OrderingWarnings(p)) != 0 {
		t.Errorf("strict preset should be monotonic, got warnings %v", OrderingWarnings(p))
	}
}

func TestResolve_CustomIsNotResolvable(t *testing.T) {
	_, err := Resolve(PresetCustom)
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestMustResolve_PanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown preset")
		}
	}()
	MustResolve("relaxed")
}

func TestApplyPreset_RoundTrip(t *testing.T) {
	start := MustResolve(PresetMinimal)

	got, err := ApplyPreset(start, PresetStrict)
	if err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	if got != MustResolve(PresetStrict) {
		t.Errorf("ApplyPreset(strict) = %+v, want %+v", got, MustResolve(PresetStrict))
	}
}

func TestApplyPreset_CustomIsNoOp(t *testing.T) {
	start, _ := UpdateField(MustResolve(PresetSoft), "reminder.afterSeconds", 120)

	got, err := ApplyPreset(start, PresetCustom)
	if err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	if got != start {
		t.Errorf("ApplyPreset(custom) changed the policy: %+v", got)
	}
}

func TestUpdateField_MarksCustom(t *testing.T) {
	paths := map[string]any{
		"reminder.enabled":             false,
		"reminder.afterSeconds":        60,
		"escalation.enabled":           false,
		"escalation.afterSeconds":      float64(420),
		"escalation.notifyPush":        false,
		"escalation.notify_sms":        "true",
		"escalation.notifyEmail":       false,
		"autoReassign.enabled":         true,
		"auto_reassign.after_seconds":  "600",
		"criticalAlert.enabled":        true,
		"critical_alert.after_seconds": 900,
		"criticalAlert.sound":          true,
	}

	for path, value := range paths {
		t.Run(path, func(t *testing.T) {
			got, err := UpdateField(MustResolve(PresetStandard), path, value)
			if err != nil {
				t.Fatalf("UpdateField failed: %v", err)
			}
			if got.ActivePreset != PresetCustom {
				t.Errorf("ActivePreset = %q, want custom", got.ActivePreset)
			}
		})
	}
}

func TestUpdateField_SetsValue(t *testing.T) {
	got, err := UpdateField(MustResolve(PresetStandard), "escalation.notifySms", true)
	if err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	want := []Channel{ChannelPush, ChannelSMS, ChannelEmail}
	channels := got.Escalation.Channels()
	if len(channels) != len(want) {
		t.Fatalf("channels = %v, want %v", channels, want)
	}
	for i := range want {
		if channels[i] != want[i] {
			t.Errorf("channels[%d] = %q, want %q", i, channels[i], want[i])
		}
	}
}

func TestUpdateField_Errors(t *testing.T) {
	base := MustResolve(PresetStandard)

	tests := []struct {
		name  string
		path  string
		value any
		want  error
	}{
		{"unknown section", "pager.enabled", true, ErrUnknownField},
		{"no dot", "reminder", true, ErrUnknownField},
		{"unknown field", "reminder.sound", true, ErrUnknownField},
		{"bool expected", "reminder.enabled", 3, ErrInvalidValue},
		{"number expected", "reminder.afterSeconds", "soon", ErrInvalidValue},
		{"negative delay", "escalation.afterSeconds", -5, ErrInvalidValue},
		{"fractional delay", "escalation.afterSeconds", 1.5, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdateField(base, tt.path, tt.value)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if got != base {
				t.Error("policy must be unchanged on error")
			}
		})
	}
}

func TestToggleStage(t *testing.T) {
	got, err := ToggleStage(MustResolve(PresetStandard), StageAutoReassign, true)
	if err != nil {
		t.Fatalf("ToggleStage failed: %v", err)
	}
	if !got.AutoReassign.Enabled {
		t.Error("expected auto-reassign enabled")
	}
	if got.ActivePreset != PresetCustom {
		t.Errorf("ActivePreset = %q, want custom", got.ActivePreset)
	}

	if _, err := ToggleStage(got, StageAcknowledged, true); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField for acknowledged, got %v", err)
	}
}

func TestCanSavePolicy(t *testing.T) {
	if r := CanSavePolicy(MustResolve(PresetStrict)); !r.Allowed {
		t.Errorf("strict should be savable: %s", r.Reason)
	}

	bad := MustResolve(PresetStrict)
	bad.ActivePreset = "relaxed"
	if r := CanSavePolicy(bad); r.Allowed {
		t.Error("unknown preset marker should be rejected")
	}

	bad = MustResolve(PresetStrict)
	bad.CriticalAlert.AfterSeconds = MaxDelaySeconds + 1
	r := CanSavePolicy(bad)
	if r.Allowed {
		t.Error("out-of-range delay should be rejected")
	}
	if !errors.Is(r.Error(), ErrInvalidValue) {
		t.Errorf("Error() = %v, want ErrInvalidValue", r.Error())
	}
}

func TestOrderingWarnings_OutOfOrderAccepted(t *testing.T) {
	p, _ := UpdateField(MustResolve(PresetStandard), "escalation.afterSeconds", 120)

	warnings := OrderingWarnings(p)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if r := CanSavePolicy(p); !r.Allowed {
		t.Errorf("out-of-order policy must still be savable: %s", r.Reason)
	}
}

func TestParsePreset(t *testing.T) {
	if _, err := ParsePreset("custom"); err != nil {
		t.Errorf("custom should parse: %v", err)
	}
	if _, err := ParsePreset("relaxed"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestReconcile(t *testing.T) {
	strict := MustResolve(PresetStrict)
	if got := Reconcile(strict); got.ActivePreset != PresetStrict {
		t.Errorf("untouched strict bundle relabelled %q", got.ActivePreset)
	}

	edited := strict
	edited.Reminder.AfterSeconds = 999
	got := Reconcile(edited)
	if got.ActivePreset != PresetCustom {
		t.Errorf("edited strict bundle kept label %q, want custom", got.ActivePreset)
	}
	if got.Reminder.AfterSeconds != 999 {
		t.Errorf("Reconcile must not change values, reminder = %d", got.Reminder.AfterSeconds)
	}

	// A policy labelled custom stays custom even when it equals a bundle.
	soft := MustResolve(PresetSoft)
	soft.ActivePreset = PresetCustom
	if got := Reconcile(soft); got.ActivePreset != PresetCustom {
		t.Errorf("custom relabelled %q", got.ActivePreset)
	}

	unknown := strict
	unknown.ActivePreset = "turbo"
	if got := Reconcile(unknown); got.ActivePreset != "turbo" {
		t.Errorf("unknown label rewritten to %q", got.ActivePreset)
	}
}
