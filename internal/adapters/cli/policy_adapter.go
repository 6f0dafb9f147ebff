package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/bellhop/internal/core/escalation"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/ports/primary"
)

// PolicyAdapter is a thin adapter that translates CLI operations to SettingsService calls.
// It depends only on primary ports, enabling easy testing with mocks.
type PolicyAdapter struct {
	settings  primary.SettingsService
	analytics primary.AnalyticsService
	out       io.Writer
}

// NewPolicyAdapter creates a new PolicyAdapter with the given services.
func NewPolicyAdapter(settings primary.SettingsService, analytics primary.AnalyticsService, out io.Writer) *PolicyAdapter {
	return &PolicyAdapter{
		settings:  settings,
		analytics: analytics,
		out:       out,
	}
}

// Show displays the tenant's policy followed by the trailing response-time summary.
func (a *PolicyAdapter) Show(ctx context.Context, tenantID string, window time.Duration) (*primary.PolicySettings, error) {
	settings, err := a.settings.GetPolicy(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	a.printPolicy(tenantID, settings)

	report, err := a.analytics.Summarize(ctx, tenantID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize analytics: %w", err)
	}
	a.PrintSummary(report)

	return settings, nil
}

// Presets lists the bundled presets.
func (a *PolicyAdapter) Presets() {
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PRESET\tREMINDER\tESCALATION\tREASSIGN\tCRITICAL\tDESCRIPTION")
	fmt.Fprintln(w, "------\t--------\t----------\t--------\t--------\t-----------")
	for _, name := range policy.PresetNames() {
		p := policy.MustResolve(name)
		info, _ := policy.Describe(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			stageCell(p, policy.StageReminder),
			stageCell(p, policy.StageEscalation),
			stageCell(p, policy.StageAutoReassign),
			stageCell(p, policy.StageCriticalAlert),
			info.Description,
		)
	}
	w.Flush()
}

// Apply replaces the tenant's policy with a preset.
func (a *PolicyAdapter) Apply(ctx context.Context, tenantID, preset string) (*primary.PolicySettings, error) {
	settings, err := a.settings.ApplyPreset(ctx, tenantID, preset)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Applied preset %s to %s\n", settings.Policy.ActivePreset, tenantID)
	a.printWarnings(settings)
	return settings, nil
}

// Set updates one policy field.
func (a *PolicyAdapter) Set(ctx context.Context, tenantID, path, value string) (*primary.PolicySettings, error) {
	settings, err := a.settings.UpdateField(ctx, tenantID, path, value)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s = %s (preset now %s)\n", path, value, settings.Policy.ActivePreset)
	a.printWarnings(settings)
	return settings, nil
}

// Toggle enables or disables one stage.
func (a *PolicyAdapter) Toggle(ctx context.Context, tenantID, stage string, enabled bool) (*primary.PolicySettings, error) {
	settings, err := a.settings.ToggleStage(ctx, tenantID, stage, enabled)
	if err != nil {
		return nil, err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(a.out, "✓ Stage %s %s for %s\n", stage, state, tenantID)
	a.printWarnings(settings)
	return settings, nil
}

// PrintSummary prints a response-time summary. Nothing is printed for an empty window.
func (a *PolicyAdapter) PrintSummary(report *primary.AnalyticsReport) {
	s := report.Summary
	if s.TotalRequests == 0 {
		fmt.Fprintf(a.out, "No requests since %s.\n", report.WindowStart.Format("2006-01-02"))
		return
	}
	fmt.Fprintf(a.out, "Since %s:\n", report.WindowStart.Format("2006-01-02"))
	fmt.Fprintf(a.out, "  Requests:       %d\n", s.TotalRequests)
	fmt.Fprintf(a.out, "  Avg response:   %s\n", escalation.FormatSeconds(s.AvgResponseTime))
	fmt.Fprintf(a.out, "  Within 2 min:   %d%%\n", s.Within2MinPercent)
	fmt.Fprintf(a.out, "  Within 5 min:   %d%%\n", s.Within5MinPercent)
}

func (a *PolicyAdapter) printPolicy(tenantID string, settings *primary.PolicySettings) {
	p := settings.Policy
	title := string(p.ActivePreset)
	if info, ok := policy.Describe(p.ActivePreset); ok {
		title = info.Title
	}

	fmt.Fprintf(a.out, "\nEscalation policy: %s\n", tenantID)
	fmt.Fprintf(a.out, "Preset:  %s\n", color.New(color.FgGreen).Sprint(title))
	if settings.Version == 0 {
		fmt.Fprintln(a.out, "Version: default (never saved)")
	} else {
		fmt.Fprintf(a.out, "Version: %d\n", settings.Version)
	}
	fmt.Fprintln(a.out)

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "STAGE\tENABLED\tAFTER\tDETAIL")
	fmt.Fprintln(w, "-----\t-------\t-----\t------")
	for _, stage := range policy.Stages {
		enabled, after := p.StageConfig(stage)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", stage, yesNo(enabled), escalation.FormatSeconds(after), stageDetail(p, stage))
	}
	w.Flush()
	fmt.Fprintln(a.out)
	a.printWarnings(settings)
}

func (a *PolicyAdapter) printWarnings(settings *primary.PolicySettings) {
	for _, warning := range settings.Warnings {
		fmt.Fprintf(a.out, "%s %s\n", color.YellowString("⚠"), warning)
	}
}

func stageCell(p policy.Policy, stage policy.Stage) string {
	enabled, after := p.StageConfig(stage)
	if !enabled {
		return "-"
	}
	return escalation.FormatSeconds(after)
}

func stageDetail(p policy.Policy, stage policy.Stage) string {
	switch stage {
	case policy.StageEscalation:
		channels := p.Escalation.Channels()
		if len(channels) == 0 {
			return "no channels"
		}
		names := make([]string, len(channels))
		for i, ch := range channels {
			names[i] = string(ch)
		}
		return strings.Join(names, ",")
	case policy.StageCriticalAlert:
		if p.CriticalAlert.Sound {
			return "sound"
		}
		return "silent"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
