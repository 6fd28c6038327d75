package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vocabnotes/internal/app"
	"vocabnotes/internal/config"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	verbose bool
	app     *app.App
}

// newRootCmd builds the command tree. Each subcommand opens the configured
// store before it runs and closes it afterwards.
func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "notectl",
		Short: "Manage English vocabulary, grammar and idiom notes",
		Long: `notectl works on the same note store as the API server.
The store is selected with STORE_DRIVER, DB_PATH and JSON_STORE_PATH, read from
the environment or a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.LogLevel = slog.LevelDebug
			} else if cfg.LogLevel < slog.LevelWarn {
				// Keep command output readable
				cfg.LogLevel = slog.LevelWarn
			}
			slog.SetDefault(app.NewLogger(cfg, os.Stderr))

			a, err := app.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		c.newAddCmd(),
		c.newEditCmd(),
		c.newListCmd(),
		c.newDeleteCmd(),
		c.newDeleteAllCmd(),
		c.newSortCmd(),
		c.newImportCmd(),
		c.newExportCmd(),
		c.newStatsCmd(),
	)
	return rootCmd
}
