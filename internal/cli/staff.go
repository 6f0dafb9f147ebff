package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/wire"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage the handler directory",
	Long:  "Add staff and supervisors and mark who is available for reassignment",
}

var staffAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a staff member or supervisor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("id")
		role, _ := cmd.Flags().GetString("role")
		_, err = wire.StaffAdapter().Add(ctx, primary.AddStaffRequest{ID: id, TenantID: tenantID, Name: args[0], Role: role})
		return err
	},
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's staff",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		_, err = wire.StaffAdapter().List(ctx, tenantID, role)
		return err
	},
}

var staffAvailableCmd = &cobra.Command{
	Use:   "available [staff-id]",
	Short: "Mark a staff member available for reassignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.StaffAdapter().SetAvailability(context.Background(), args[0], true)
	},
}

var staffUnavailableCmd = &cobra.Command{
	Use:   "unavailable [staff-id]",
	Short: "Mark a staff member unavailable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.StaffAdapter().SetAvailability(context.Background(), args[0], false)
	},
}

func init() {
	staffAddCmd.Flags().String("id", "", "Staff id (generated when empty)")
	staffAddCmd.Flags().StringP("role", "r", "staff", "Role: staff or supervisor")
	staffListCmd.Flags().StringP("role", "r", "", "Filter by role")

	staffCmd.AddCommand(staffAddCmd)
	staffCmd.AddCommand(staffListCmd)
	staffCmd.AddCommand(staffAvailableCmd)
	staffCmd.AddCommand(staffUnavailableCmd)
}

// StaffCmd returns the staff command
func StaffCmd() *cobra.Command {
	return staffCmd
}
