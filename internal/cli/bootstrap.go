// Package cli provides CLI commands for the bellhop application.
package cli

import (
	gocontext "context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/config"
	bellhopctx "github.com/example/bellhop/internal/context"
	"github.com/example/bellhop/internal/db"
	"github.com/example/bellhop/internal/logging"
	"github.com/example/bellhop/internal/wire"
)

// Global flags, bound on the root command.
var (
	globalConfigPath string
	globalTenant     string
	globalLogLevel   string
)

// Bootstrap loads the configuration, installs the logger and configures wiring.
// Should be called once at CLI startup in PersistentPreRunE.
func Bootstrap(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if globalLogLevel != "" {
		cfg.Log.Level = globalLogLevel
	}

	logger, err := logging.Install(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	wire.Configure(cfg, logger)
	return nil
}

// configPath returns --config, or config.yaml in the bellhop home.
func configPath() (string, error) {
	if globalConfigPath != "" {
		return globalConfigPath, nil
	}
	home, err := db.Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, config.FileName), nil
}

// NewContext creates a context.Background() with the resolved tenant embedded.
// Tenant-scoped commands should use this instead of context.Background() directly.
func NewContext() (gocontext.Context, string, error) {
	ctx, err := bellhopctx.WithTenant(gocontext.Background(), globalTenant)
	if err != nil {
		return nil, "", err
	}
	return ctx, bellhopctx.TenantFromContext(ctx), nil
}

// RootCmd returns the root command with every subcommand registered.
func RootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "bellhop",
		Short:   "bellhop - escalation engine for unanswered service requests",
		Version: version,
		Long: `bellhop escalates service requests that no staff member acknowledged in time.
Each tenant configures reminders, supervisor escalation, automatic reassignment
and critical alerts; the engine fires each stage at most once per request.`,
		PersistentPreRunE: Bootstrap,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&globalConfigPath, "config", "", "Config file (default ~/.bellhop/config.yaml)")
	root.PersistentFlags().StringVarP(&globalTenant, "tenant", "t", "", "Tenant id (default $BELLHOP_TENANT)")
	root.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Override log.level (debug|info|warn|error)")

	root.AddCommand(InitCmd())
	root.AddCommand(PolicyCmd())
	root.AddCommand(RequestCmd())
	root.AddCommand(StaffCmd())
	root.AddCommand(EngineCmd())
	root.AddCommand(AnalyticsCmd())
	root.AddCommand(ServeCmd())

	return root
}
