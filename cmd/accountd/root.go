// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/veyrm/accountd/internal/config"
	"github.com/veyrm/accountd/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the accountd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accountd",
		Short: "accountd - account and cloud save service for Veyrm",
		Long: `accountd manages player accounts, sessions, and cloud save games
for the Veyrm roguelike, backed by PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// loadConfig loads the configuration for a subcommand, layering the
// optional config file under the command's flags. Without --config,
// the XDG config directory is searched for accountd.yaml.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	path := configFile
	if path == "" {
		path = xdg.ConfigFile()
	}
	cfg, err := config.Load(path, flags)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDatabaseURL returns the database URL from the configuration,
// falling back to the DATABASE_URL environment variable.
func resolveDatabaseURL(cfg config.Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
}
