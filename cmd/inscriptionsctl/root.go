package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"membershipevents/config"
)

var (
	version = "dev"
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "inscriptionsctl",
	Short:   "Administer event inscriptions",
	Long:    `Administrative commands for the membership events service. Configuration is read from the same environment variables (and .env file) as the server.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.LogLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger = config.NewLogger(cfg.Environment, level, os.Stderr)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}
