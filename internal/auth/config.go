// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"time"

	"github.com/samber/oops"
)

// Default policy values.
const (
	DefaultSessionLifetime      = 4 * time.Hour
	DefaultRefreshLifetime      = 30 * 24 * time.Hour
	DefaultMaxLoginAttempts     = 5
	DefaultLockoutDuration      = 15 * time.Minute
	DefaultMinPasswordLength    = 8
	DefaultMinUsernameLength    = 3
	DefaultMaxUsernameLength    = 20
	DefaultVerificationTokenTTL = 24 * time.Hour
	DefaultResetTokenTTL        = time.Hour
	DefaultRefreshHintFraction  = 0.1
	DefaultRevokedRetention     = 30 * 24 * time.Hour
)

// MaxUsernameLengthLimit caps the configurable username bound. The
// extended variant of the rules allows usernames up to this length.
const MaxUsernameLengthLimit = 50

// Config holds the policy knobs for the authentication service. The
// zero value is not usable; start from DefaultConfig and override.
type Config struct {
	// SessionLifetime is how long a session token is valid without
	// remember-me. Remember-me sessions live as long as the refresh
	// token instead.
	SessionLifetime time.Duration

	// RefreshLifetime is how long a refresh token is valid.
	RefreshLifetime time.Duration

	// MaxLoginAttempts is the failed-attempt threshold that locks the
	// account.
	MaxLoginAttempts int

	// LockoutDuration is how long a lockout holds after the last failed
	// attempt.
	LockoutDuration time.Duration

	// Password complexity policy.
	MinPasswordLength int
	RequireUppercase  bool
	RequireLowercase  bool
	RequireNumbers    bool
	RequireSymbols    bool

	// Username length bounds. MaxUsernameLength may be raised to
	// MaxUsernameLengthLimit for deployments that allowed the extended
	// variant.
	MinUsernameLength int
	MaxUsernameLength int

	// One-time token lifetimes.
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	// RefreshHintFraction is the trailing fraction of a session's
	// lifetime during which validation reports needs_refresh.
	RefreshHintFraction float64

	// RevokedRetention is how long revoked sessions are kept before the
	// cleanup sweep hard-deletes them.
	RevokedRetention time.Duration
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{
		SessionLifetime:      DefaultSessionLifetime,
		RefreshLifetime:      DefaultRefreshLifetime,
		MaxLoginAttempts:     DefaultMaxLoginAttempts,
		LockoutDuration:      DefaultLockoutDuration,
		MinPasswordLength:    DefaultMinPasswordLength,
		RequireUppercase:     true,
		RequireLowercase:     true,
		RequireNumbers:       true,
		RequireSymbols:       false,
		MinUsernameLength:    DefaultMinUsernameLength,
		MaxUsernameLength:    DefaultMaxUsernameLength,
		VerificationTokenTTL: DefaultVerificationTokenTTL,
		ResetTokenTTL:        DefaultResetTokenTTL,
		RefreshHintFraction:  DefaultRefreshHintFraction,
		RevokedRetention:     DefaultRevokedRetention,
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.SessionLifetime <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session lifetime must be positive")
	}
	if c.RefreshLifetime <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("refresh lifetime must be positive")
	}
	if c.RefreshLifetime < c.SessionLifetime {
		return oops.Code("CONFIG_INVALID").Errorf("refresh lifetime must not be shorter than session lifetime")
	}
	if c.MaxLoginAttempts <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("max login attempts must be positive")
	}
	if c.LockoutDuration <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("lockout duration must be positive")
	}
	if c.MinPasswordLength <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("min password length must be positive")
	}
	if c.MinUsernameLength <= 0 || c.MaxUsernameLength < c.MinUsernameLength {
		return oops.Code("CONFIG_INVALID").
			With("min", c.MinUsernameLength).
			With("max", c.MaxUsernameLength).
			Errorf("username length bounds are inconsistent")
	}
	if c.MaxUsernameLength > MaxUsernameLengthLimit {
		return oops.Code("CONFIG_INVALID").
			With("max", c.MaxUsernameLength).
			Errorf("max username length must not exceed %d", MaxUsernameLengthLimit)
	}
	if c.VerificationTokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("one-time token lifetimes must be positive")
	}
	if c.RefreshHintFraction <= 0 || c.RefreshHintFraction >= 1 {
		return oops.Code("CONFIG_INVALID").
			With("fraction", c.RefreshHintFraction).
			Errorf("refresh hint fraction must be in (0, 1)")
	}
	if c.RevokedRetention <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("revoked retention must be positive")
	}
	return nil
}
