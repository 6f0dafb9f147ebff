package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/bellhop/internal/config"
	"github.com/example/bellhop/internal/db"
	"github.com/example/bellhop/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the bellhop database and config",
		Long:  `Create ~/.bellhop with a default config.yaml and a migrated database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.SaveConfig(path, wire.Config()); err != nil {
					return err
				}
				fmt.Printf("%s Config written to %s\n", color.GreenString("✓"), path)
			} else {
				fmt.Printf("%s Config already exists at %s\n", color.YellowString("!"), path)
			}

			dbPath := wire.Config().Database.Path
			if dbPath == "" {
				if dbPath, err = db.DefaultPath(); err != nil {
					return err
				}
			}
			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()
			fmt.Printf("%s Database ready at %s\n", color.GreenString("✓"), dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  bellhop policy apply standard --tenant hotel-1")
			fmt.Println("  bellhop staff add \"Ana\" --tenant hotel-1")
			fmt.Println("  bellhop engine run")
			return nil
		},
	}
}
