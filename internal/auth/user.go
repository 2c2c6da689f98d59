// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User represents a player account.
type User struct {
	ID                  ulid.ULID
	Username            string
	Email               string
	PasswordHash        string
	Salt                string
	EmailVerified       bool
	AccountLocked       bool
	FailedLoginAttempts int
	LastFailedLogin     *time.Time
	LastLogin           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUser creates a validated User instance with email_verified=false.
// Username and email shape must already have passed the validation rules;
// this constructor only guards against structurally invalid state.
func NewUser(username, email, passwordHash, salt string) (*User, error) {
	if username == "" {
		return nil, oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if salt == "" {
		return nil, oops.Code("USER_INVALID_SALT").Errorf("salt cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsLockedOutAt reports whether the account is locked at the given time.
// A lock holds while the account_locked flag is set and the last failed
// attempt is within the lockout window. An account locked without a
// recorded failure (an explicit administrative lock) never expires
// passively.
func (u *User) IsLockedOutAt(now time.Time, lockoutDuration time.Duration) bool {
	if !u.AccountLocked {
		return false
	}
	if u.LastFailedLogin != nil && now.Sub(*u.LastFailedLogin) >= lockoutDuration {
		// Lockout window has elapsed; the flag is cleared on the next
		// successful login.
		return false
	}
	return true
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns a *DuplicateError identifying the
	// violated column when username or email already exist.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username (case-sensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the password hash and salt.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash, salt string) error

	// UpdateLastLogin stamps the last successful login time.
	UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// IncrementFailedLogins bumps the failure counter, stamps
	// last_failed_login, and returns the new count. Implemented as a
	// single UPDATE ... RETURNING so concurrent logins never lose an
	// update.
	IncrementFailedLogins(ctx context.Context, id ulid.ULID, at time.Time) (int, error)

	// ResetFailedLogins zeroes the failure counter and clears
	// last_failed_login.
	ResetFailedLogins(ctx context.Context, id ulid.ULID) error

	// SetAccountLocked sets or clears the account_locked flag.
	SetAccountLocked(ctx context.Context, id ulid.ULID, locked bool) error

	// MarkEmailVerified sets email_verified=true.
	MarkEmailVerified(ctx context.Context, id ulid.ULID) error
}
