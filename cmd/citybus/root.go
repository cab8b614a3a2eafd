package main

import (
	"fmt"
	"os"

	"github.com/rsclarke/citybus/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "citybus",
	Short: "Client for the citybus bus-tracking API",
	Long: `citybus downloads and unpacks the encrypted city databases of the
citybus service and polls live bus positions for a city.

Configuration is read from an optional YAML file (--config), then from
CITYBUS_* environment variables, then from command line flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.FromEnv())
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logging.Sync(logger)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
