// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Failure reasons recorded on the login audit trail. Empty on success.
const (
	ReasonBadCredentials = "invalid_credentials"
	ReasonAccountLocked  = "account_locked"
	ReasonUnknownAccount = "unknown_account"
)

// LoginAttempt is one row of the login audit trail. UserID is nil when the
// presented identifier matched no account; SessionID is set only on
// successful attempts that produced a session.
type LoginAttempt struct {
	ID            ulid.ULID
	UserID        *ulid.ULID
	Identifier    string
	Success       bool
	RemoteAddr    string
	UserAgent     string
	FailureReason string
	SessionID     *ulid.ULID
	AttemptedAt   time.Time
}

// NewLoginAttempt records an attempt outcome. The identifier is stored as
// presented so operators can spot enumeration probes.
func NewLoginAttempt(userID *ulid.ULID, identifier string, success bool, remoteAddr, userAgent, failureReason string, sessionID *ulid.ULID) *LoginAttempt {
	return &LoginAttempt{
		ID:            ulid.Make(),
		UserID:        userID,
		Identifier:    identifier,
		Success:       success,
		RemoteAddr:    remoteAddr,
		UserAgent:     userAgent,
		FailureReason: failureReason,
		SessionID:     sessionID,
		AttemptedAt:   time.Now(),
	}
}

// LoginAttemptRepository manages the login audit trail.
type LoginAttemptRepository interface {
	// Record appends an attempt. Audit writes are best-effort; callers
	// log failures but never fail the login on them.
	Record(ctx context.Context, attempt *LoginAttempt) error

	// RecentForUser lists the newest attempts for a user, newest first,
	// capped at limit.
	RecentForUser(ctx context.Context, userID ulid.ULID, limit int) ([]*LoginAttempt, error)

	// DeleteBefore prunes audit rows older than the cutoff. Returns the
	// number of rows deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
