package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/wire"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Open, acknowledge and close service requests",
}

var requestOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a service request",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("id")
		handler, _ := cmd.Flags().GetString("handler")
		channel, _ := cmd.Flags().GetString("channel")

		_, err = wire.RequestAdapter().Open(ctx, primary.OpenRequestRequest{
			ID:        id,
			TenantID:  tenantID,
			Channel:   channel,
			HandlerID: handler,
		})
		return err
	},
}

var requestAckCmd = &cobra.Command{
	Use:   "ack [request-id]",
	Short: "Acknowledge a request",
	Long:  "Acknowledge a request. Escalation stops once a request is acknowledged.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, _ := cmd.Flags().GetString("handler")
		_, err := wire.RequestAdapter().Acknowledge(context.Background(), args[0], handler)
		return err
	},
}

var requestCloseCmd = &cobra.Command{
	Use:   "close [request-id]",
	Short: "Close a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.RequestAdapter().Close(context.Background(), args[0])
		return err
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show [request-id]",
	Short: "Show a request with its stage history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.RequestAdapter().Show(context.Background(), args[0])
		return err
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		_, err = wire.RequestAdapter().List(ctx, tenantID, status, limit)
		return err
	},
}

func init() {
	// request open flags
	requestOpenCmd.Flags().String("id", "", "Request id (generated when empty)")
	requestOpenCmd.Flags().String("handler", "", "Assigned handler id")
	requestOpenCmd.Flags().StringP("channel", "c", "push", "Delivery channel to the handler (push|sms|email)")

	// request ack flags
	requestAckCmd.Flags().String("handler", "", "Acknowledging handler (default: assigned handler)")

	// request list flags
	requestListCmd.Flags().StringP("status", "s", "", "Filter by status (open|acknowledged|closed)")
	requestListCmd.Flags().IntP("limit", "n", 0, "Maximum number of requests")

	// Register subcommands
	requestCmd.AddCommand(requestOpenCmd)
	requestCmd.AddCommand(requestAckCmd)
	requestCmd.AddCommand(requestCloseCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestListCmd)
}

// RequestCmd returns the request command
func RequestCmd() *cobra.Command {
	return requestCmd
}
