package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/butterfly/internal/config"
	"github.com/HammerMeetNail/butterfly/internal/logging"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
	}
	_ = logging.Default.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "butterfly",
		Short:         "Social graph API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	rootCmd.AddCommand(
		newServeCmd(&envFile),
		newMigrateCmd(&envFile),
		newCreateSuperuserCmd(&envFile),
		newSetPasswordCmd(&envFile),
	)
	return rootCmd
}

func loadConfig(envFile string) (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New()
	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}
	return cfg, logger, nil
}
