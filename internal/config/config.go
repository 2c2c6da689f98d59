// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package config loads accountd configuration from defaults, an
// optional YAML file, and command-line flags, in that order of
// precedence.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/veyrm/accountd/internal/auth"
	"github.com/veyrm/accountd/internal/savegame"
)

// Default values for top-level settings.
const (
	DefaultLogFormat             = "json"
	DefaultMetricsAddr           = "127.0.0.1:9100"
	DefaultSweepInterval         = time.Hour
	DefaultLoginHistoryRetention = 90 * 24 * time.Hour
)

// AuthConfig holds the authentication policy knobs. Fields mirror
// auth.Config; see ToAuthConfig.
type AuthConfig struct {
	SessionLifetime      time.Duration `koanf:"session_lifetime"`
	RefreshLifetime      time.Duration `koanf:"refresh_lifetime"`
	MaxLoginAttempts     int           `koanf:"max_login_attempts"`
	LockoutDuration      time.Duration `koanf:"lockout_duration"`
	MinPasswordLength    int           `koanf:"min_password_length"`
	RequireUppercase     bool          `koanf:"require_uppercase"`
	RequireLowercase     bool          `koanf:"require_lowercase"`
	RequireNumbers       bool          `koanf:"require_numbers"`
	RequireSymbols       bool          `koanf:"require_symbols"`
	MinUsernameLength    int           `koanf:"min_username_length"`
	MaxUsernameLength    int           `koanf:"max_username_length"`
	VerificationTokenTTL time.Duration `koanf:"verification_token_ttl"`
	ResetTokenTTL        time.Duration `koanf:"reset_token_ttl"`
}

// Config is the top-level accountd configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. It can also be
	// supplied via the DATABASE_URL environment variable.
	DatabaseURL string `koanf:"database_url"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	// MetricsAddr is the observability listen address. Empty disables
	// the metrics/health server.
	MetricsAddr string `koanf:"metrics_addr"`

	// SweepInterval is how often the sweep daemon runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// LoginHistoryRetention is how long login attempts are kept before
	// the sweep prunes them.
	LoginHistoryRetention time.Duration `koanf:"login_history_retention"`

	// BackupKeep is how many save backups to retain per save.
	BackupKeep int `koanf:"backup_keep"`

	Auth AuthConfig `koanf:"auth"`
}

// Default returns the configuration with all defaults applied.
func Default() Config {
	ac := auth.DefaultConfig()
	return Config{
		LogFormat:             DefaultLogFormat,
		MetricsAddr:           DefaultMetricsAddr,
		SweepInterval:         DefaultSweepInterval,
		LoginHistoryRetention: DefaultLoginHistoryRetention,
		BackupKeep:            savegame.DefaultBackupKeep,
		Auth: AuthConfig{
			SessionLifetime:      ac.SessionLifetime,
			RefreshLifetime:      ac.RefreshLifetime,
			MaxLoginAttempts:     ac.MaxLoginAttempts,
			LockoutDuration:      ac.LockoutDuration,
			MinPasswordLength:    ac.MinPasswordLength,
			RequireUppercase:     ac.RequireUppercase,
			RequireLowercase:     ac.RequireLowercase,
			RequireNumbers:       ac.RequireNumbers,
			RequireSymbols:       ac.RequireSymbols,
			MinUsernameLength:    ac.MinUsernameLength,
			MaxUsernameLength:    ac.MaxUsernameLength,
			VerificationTokenTTL: ac.VerificationTokenTTL,
			ResetTokenTTL:        ac.ResetTokenTTL,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path (if non-empty), then the given flag set (if non-nil). Flag names
// use dashes and map to the corresponding underscore keys, so
// --metrics-addr overrides metrics_addr.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	return cfg, nil
}

// ToAuthConfig converts the loaded auth section into the policy struct
// the authentication service consumes. RefreshHintFraction and
// RevokedRetention keep their defaults; they are operational tuning,
// not deployment policy.
func (c Config) ToAuthConfig() auth.Config {
	ac := auth.DefaultConfig()
	ac.SessionLifetime = c.Auth.SessionLifetime
	ac.RefreshLifetime = c.Auth.RefreshLifetime
	ac.MaxLoginAttempts = c.Auth.MaxLoginAttempts
	ac.LockoutDuration = c.Auth.LockoutDuration
	ac.MinPasswordLength = c.Auth.MinPasswordLength
	ac.RequireUppercase = c.Auth.RequireUppercase
	ac.RequireLowercase = c.Auth.RequireLowercase
	ac.RequireNumbers = c.Auth.RequireNumbers
	ac.RequireSymbols = c.Auth.RequireSymbols
	ac.MinUsernameLength = c.Auth.MinUsernameLength
	ac.MaxUsernameLength = c.Auth.MaxUsernameLength
	ac.VerificationTokenTTL = c.Auth.VerificationTokenTTL
	ac.ResetTokenTTL = c.Auth.ResetTokenTTL
	return ac
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("sweep interval must be positive")
	}
	if c.LoginHistoryRetention <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("login history retention must be positive")
	}
	if c.BackupKeep <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("backup keep must be positive")
	}
	if err := c.ToAuthConfig().Validate(); err != nil {
		return err
	}
	return nil
}
