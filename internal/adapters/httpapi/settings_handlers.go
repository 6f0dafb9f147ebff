package httpapi

import (
	"fmt"
	"net/http"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/ports/primary"
)

// settingsPayload is the flat wire shape of a policy used by the backoffice settings screen.
type settingsPayload struct {
	// Base notifications are always on; reported for display only.
	NotifyAssignedStaff bool `json:"notify_assigned_staff"`
	NotifyDashboard     bool `json:"notify_dashboard"`

	ReminderEnabled           bool   `json:"reminder_enabled"`
	ReminderAfterSeconds      int    `json:"reminder_after_seconds"`
	EscalationEnabled         bool   `json:"escalation_enabled"`
	EscalationAfterSeconds    int    `json:"escalation_after_seconds"`
	EscalationNotifyPush      bool   `json:"escalation_notify_push"`
	EscalationNotifySMS       bool   `json:"escalation_notify_sms"`
	EscalationNotifyEmail     bool   `json:"escalation_notify_email"`
	AutoReassignEnabled       bool   `json:"auto_reassign_enabled"`
	AutoReassignAfterSeconds  int    `json:"auto_reassign_after_seconds"`
	CriticalAlertEnabled      bool   `json:"critical_alert_enabled"`
	CriticalAlertAfterSeconds int    `json:"critical_alert_after_seconds"`
	CriticalAlertSound        bool   `json:"critical_alert_sound"`
	ActivePreset              string `json:"active_preset"`
}

func toPayload(p policy.Policy) settingsPayload {
	return settingsPayload{
		NotifyAssignedStaff:       true,
		NotifyDashboard:           true,
		ReminderEnabled:           p.Reminder.Enabled,
		ReminderAfterSeconds:      p.Reminder.AfterSeconds,
		EscalationEnabled:         p.Escalation.Enabled,
		EscalationAfterSeconds:    p.Escalation.AfterSeconds,
		EscalationNotifyPush:      p.Escalation.NotifyPush,
		EscalationNotifySMS:       p.Escalation.NotifySMS,
		EscalationNotifyEmail:     p.Escalation.NotifyEmail,
		AutoReassignEnabled:       p.AutoReassign.Enabled,
		AutoReassignAfterSeconds:  p.AutoReassign.AfterSeconds,
		CriticalAlertEnabled:      p.CriticalAlert.Enabled,
		CriticalAlertAfterSeconds: p.CriticalAlert.AfterSeconds,
		CriticalAlertSound:        p.CriticalAlert.Sound,
		ActivePreset:              string(p.ActivePreset),
	}
}

func (sp settingsPayload) toPolicy() policy.Policy {
	preset := policy.Preset(sp.ActivePreset)
	if preset == "" {
		preset = policy.PresetCustom
	}
	return policy.Policy{
		ActivePreset: preset,
		Reminder:     policy.Reminder{Enabled: sp.ReminderEnabled, AfterSeconds: sp.ReminderAfterSeconds},
		Escalation: policy.Escalation{
			Enabled:      sp.EscalationEnabled,
			AfterSeconds: sp.EscalationAfterSeconds,
			NotifyPush:   sp.EscalationNotifyPush,
			NotifySMS:    sp.EscalationNotifySMS,
			NotifyEmail:  sp.EscalationNotifyEmail,
		},
		AutoReassign:  policy.AutoReassign{Enabled: sp.AutoReassignEnabled, AfterSeconds: sp.AutoReassignAfterSeconds},
		CriticalAlert: policy.CriticalAlert{Enabled: sp.CriticalAlertEnabled, AfterSeconds: sp.CriticalAlertAfterSeconds, Sound: sp.CriticalAlertSound},
	}
}

type presetView struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func settingsResponse(ps *primary.PolicySettings) map[string]any {
	warnings := ps.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return map[string]any{
		"success":  true,
		"settings": toPayload(ps.Policy),
		"version":  ps.Version,
		"warnings": warnings,
	}
}

// getSettings returns the tenant's policy with the trailing analytics summary.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := queryTenant(r)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}

	settings, err := s.services.Settings.GetPolicy(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := s.services.Analytics.Summarize(r.Context(), tenantID, s.analyticsWindow)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body := settingsResponse(settings)
	body["analytics"] = report.Summary
	writeJSON(w, http.StatusOK, body)
}

type putSettingsBody struct {
	TenantID   string           `json:"tenantId"`
	MerchantID string           `json:"merchantId"`
	Preset     string           `json:"preset"`
	Settings   *settingsPayload `json:"settings"`
}

// putSettings applies a preset or stores a full custom policy.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var body putSettingsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	tenantID := body.TenantID
	if tenantID == "" {
		tenantID = body.MerchantID
	}
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}

	var (
		settings *primary.PolicySettings
		err      error
	)
	switch {
	case body.Preset != "":
		settings, err = s.services.Settings.ApplyPreset(r.Context(), tenantID, body.Preset)
	case body.Settings != nil:
		settings, err = s.services.Settings.ReplacePolicy(r.Context(), tenantID, body.Settings.toPolicy())
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("either preset or settings is required"))
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(settings))
}

type patchFieldBody struct {
	TenantID string `json:"tenantId"`
	Path     string `json:"path"`
	Value    any    `json:"value"`
}

// patchSettingsField updates one field, e.g. {"path": "reminder.afterSeconds", "value": 120}.
func (s *Server) patchSettingsField(w http.ResponseWriter, r *http.Request) {
	var body patchFieldBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if body.TenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}

	settings, err := s.services.Settings.UpdateField(r.Context(), body.TenantID, body.Path, body.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(settings))
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	var presets []presetView
	for _, name := range policy.PresetNames() {
		info, _ := policy.Describe(name)
		presets = append(presets, presetView{Name: string(info.Name), Title: info.Title, Description: info.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "presets": presets})
}
