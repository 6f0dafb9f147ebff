package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/core/escalation"
	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/wire"
)

// shutdownGrace bounds how long pending notifications may drain on exit.
const shutdownGrace = 10 * time.Second

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run the escalation engine",
	Long: `Evaluate open requests against their tenant's policy and fire due stages.

Use "engine tick" for a single pass (e.g. from cron) or "engine run" to poll
until interrupted.`,
}

var engineTickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one evaluation pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer shutdown()

		engine := wire.EscalationEngine()
		now := time.Now()

		var (
			result *primary.EvaluationResult
			err    error
		)
		if globalTenant != "" {
			result, err = engine.Evaluate(context.Background(), globalTenant, now)
		} else {
			result, err = engine.EvaluateAll(context.Background(), now)
		}
		if err != nil {
			return err
		}
		printEvaluation(result)
		return nil
	},
}

var engineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer shutdown()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Polling every %s (Ctrl-C to stop)\n", wire.Config().Engine.PollInterval)
		if err := wire.Poller().Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func printEvaluation(result *primary.EvaluationResult) {
	if len(result.Fired) == 0 {
		fmt.Printf("Evaluated %d open request(s), nothing due\n", result.Evaluated)
	} else {
		fmt.Printf("Evaluated %d open request(s), fired %d stage(s):\n", result.Evaluated, len(result.Fired))
		for _, f := range result.Fired {
			fmt.Printf("  %s  %s  %s after %s\n",
				f.TenantID, f.RequestID, stageColor(f.Stage), escalation.FormatSeconds(f.ElapsedSeconds))
		}
	}
	for _, tenantID := range result.Skipped {
		fmt.Printf("  %s %s: evaluated elsewhere\n", color.YellowString("skipped"), tenantID)
	}
}

func stageColor(stage string) string {
	switch policy.Stage(stage) {
	case policy.StageReminder:
		return color.New(color.FgCyan).Sprint(stage)
	case policy.StageEscalation:
		return color.New(color.FgYellow).Sprint(stage)
	case policy.StageAutoReassign:
		return color.New(color.FgMagenta).Sprint(stage)
	case policy.StageCriticalAlert:
		return color.New(color.FgRed, color.Bold).Sprint(stage)
	}
	return stage
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	wire.Shutdown(ctx)
}

func init() {
	engineCmd.AddCommand(engineTickCmd)
	engineCmd.AddCommand(engineRunCmd)
}

// EngineCmd returns the engine command
func EngineCmd() *cobra.Command {
	return engineCmd
}
