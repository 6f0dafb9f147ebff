package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/bellhop/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the engine",
	Long: `Serve the settings, request and analytics API and poll the escalation engine
in the same process. Pass --no-engine when another process runs the engine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer shutdown()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = wire.Config().HTTP.Addr
		}
		noEngine, _ := cmd.Flags().GetBool("no-engine")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return wire.HTTPServer().ListenAndServe(ctx, addr)
		})
		if !noEngine {
			g.Go(func() error {
				return wire.Poller().Run(ctx)
			})
		}

		fmt.Printf("Listening on %s\n", addr)
		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default http.addr)")
	serveCmd.Flags().Bool("no-engine", false, "Serve the API without polling")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
