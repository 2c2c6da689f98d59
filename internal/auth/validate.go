// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/oops"
)

// Validation patterns.
var (
	// usernameRegex matches usernames containing only letters, numbers,
	// and underscores.
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	// emailRegex matches the local@domain.tld shape. The charset excludes
	// whitespace and a second @, so those are rejected implicitly.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// MaxEmailLength bounds stored email addresses.
const MaxEmailLength = 255

// ValidateUsername validates a username against the configured bounds.
// Returns nil when valid.
func ValidateUsername(username string, cfg Config) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("Username cannot be empty")
	}
	if len(username) < cfg.MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", cfg.MinUsernameLength).
			Errorf("Username must be at least %d characters", cfg.MinUsernameLength)
	}
	if len(username) > cfg.MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", cfg.MaxUsernameLength).
			Errorf("Username must be no more than %d characters", cfg.MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("Username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail validates an email address shape.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("Email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("Email must be no more than %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("Invalid email format")
	}
	return nil
}

// ValidatePassword validates a password against the configured length and
// complexity policy. Each missing character class is reported by name.
func ValidatePassword(password string, cfg Config) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_PASSWORD").Errorf("Password cannot be empty")
	}
	if len(password) < cfg.MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", cfg.MinPasswordLength).
			Errorf("Password must be at least %d characters", cfg.MinPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	var missing []string
	if cfg.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letters")
	}
	if cfg.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letters")
	}
	if cfg.RequireNumbers && !hasDigit {
		missing = append(missing, "numbers")
	}
	if cfg.RequireSymbols && !hasSymbol {
		missing = append(missing, "symbols")
	}
	if len(missing) > 0 {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("missing", missing).
			Errorf("Password must contain %s", joinRequirements(missing))
	}

	return nil
}

// ValidatePasswordConfirmation checks that the confirmation matches.
func ValidatePasswordConfirmation(password, confirmation string) error {
	if password != confirmation {
		return oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("Passwords do not match")
	}
	return nil
}

// ValidateLoginCredentials checks that both login fields are present.
func ValidateLoginCredentials(usernameOrEmail, password string) error {
	if usernameOrEmail == "" || password == "" {
		return oops.Code("AUTH_INCOMPLETE_CREDENTIALS").Errorf("Please enter username and password")
	}
	return nil
}

// ValidateRegistrationData checks all registration fields: completeness
// first, then username, email, password, and confirmation in that fixed
// order. The first failing rule wins.
func ValidateRegistrationData(username, email, password, confirmation string, cfg Config) error {
	if username == "" || email == "" || password == "" || confirmation == "" {
		return oops.Code("AUTH_INCOMPLETE_REGISTRATION").Errorf("Please fill in all fields")
	}
	if err := ValidateUsername(username, cfg); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(password, cfg); err != nil {
		return err
	}
	if err := ValidatePasswordConfirmation(password, confirmation); err != nil {
		return err
	}
	return nil
}

// joinRequirements renders a missing-class list as "a, b and c".
func joinRequirements(reqs []string) string {
	switch len(reqs) {
	case 1:
		return reqs[0]
	case 2:
		return reqs[0] + " and " + reqs[1]
	default:
		return strings.Join(reqs[:len(reqs)-1], ", ") + " and " + reqs[len(reqs)-1]
	}
}
