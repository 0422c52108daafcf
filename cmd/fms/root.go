package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fms/api/internal/config"
	"fms/api/internal/logging"
)

var (
	// verbose forces debug logging regardless of FMS_LOG_LEVEL
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fms",
	Short: "FMS - freight management API",
	Long: `fms serves the freight management API: master data and sea booking
lists with Korean-locale sorting, booking exports, and the navigation guard
that protects unsaved registration screens.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, verbose)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
