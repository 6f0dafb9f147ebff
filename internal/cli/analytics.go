package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/wire"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show response-time analytics for a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, tenantID, err := NewContext()
		if err != nil {
			return err
		}

		window := wire.Config().Analytics.Window
		days, _ := cmd.Flags().GetInt("days")
		if days < 0 {
			return fmt.Errorf("--days must be positive")
		}
		if days > 0 {
			window = time.Duration(days) * 24 * time.Hour
		}

		report, err := wire.AnalyticsService().Summarize(ctx, tenantID, window)
		if err != nil {
			return err
		}
		wire.PolicyAdapter().PrintSummary(report)
		return nil
	},
}

func init() {
	analyticsCmd.Flags().IntP("days", "d", 0, "Trailing window in days (default analytics.window)")
}

// AnalyticsCmd returns the analytics command
func AnalyticsCmd() *cobra.Command {
	return analyticsCmd
}
