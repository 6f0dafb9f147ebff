package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/wire"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage a tenant's escalation policy",
	Long:  "Show, apply presets to and edit the escalation policy of a tenant",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the policy and recent response times",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		_, err = wire.PolicyAdapter().Show(ctx, tenantID, wire.Config().Analytics.Window)
		return err
	},
}

var policyPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the bundled presets",
	Run: func(cmd *cobra.Command, args []string) {
		wire.PolicyAdapter().Presets()
	},
}

var policyApplyCmd = &cobra.Command{
	Use:   "apply [preset]",
	Short: "Replace the policy with a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		_, err = wire.PolicyAdapter().Apply(ctx, tenantID, args[0])
		return err
	},
}

var policySetCmd = &cobra.Command{
	Use:   "set [field] [value]",
	Short: "Set one policy field",
	Long: `Set one policy field, e.g.

  bellhop policy set reminder.afterSeconds 120
  bellhop policy set escalation.notifySms true

The policy is marked custom afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		_, err = wire.PolicyAdapter().Set(ctx, tenantID, args[0], args[1])
		return err
	},
}

var policyToggleCmd = &cobra.Command{
	Use:   "toggle [stage] [on|off]",
	Short: "Enable or disable one stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		_, err = wire.PolicyAdapter().Toggle(ctx, tenantID, args[0], enabled)
		return err
	},
}

// parseOnOff accepts on/off in addition to the strconv booleans.
func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyPresetsCmd)
	policyCmd.AddCommand(policyApplyCmd)
	policyCmd.AddCommand(policySetCmd)
	policyCmd.AddCommand(policyToggleCmd)
}

// PolicyCmd returns the policy command
func PolicyCmd() *cobra.Command {
	return policyCmd
}
