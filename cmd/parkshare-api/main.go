// README: Entry point; cobra root command that loads config and the global logger.
package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parkshare/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "parkshare-api",
	Short:        "ParkShare parking marketplace backend",
	Long:         "Serves the ParkShare API and runs maintenance jobs: schema migrations, GEO index rebuilds and misuse scans.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
