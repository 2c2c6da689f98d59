// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session represents an authenticated play session. The token columns hold
// SHA-256 hashes; plaintext tokens exist only in the response to the client
// that earned them.
type Session struct {
	ID               ulid.ULID
	UserID           ulid.ULID
	TokenHash        string
	RefreshTokenHash string
	RememberMe       bool
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	LastUsedAt       time.Time
	Revoked          bool
	RevokedAt        *time.Time
}

// NewSession creates a validated Session for a user. A remember-me session
// lives as long as its refresh token; otherwise it gets the shorter session
// lifetime. The refresh window always starts from the same instant.
func NewSession(userID ulid.ULID, tokenHash, refreshTokenHash string, rememberMe bool, cfg Config) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("token hash cannot be empty")
	}
	if refreshTokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("refresh token hash cannot be empty")
	}

	now := time.Now()
	lifetime := cfg.SessionLifetime
	if rememberMe {
		lifetime = cfg.RefreshLifetime
	}

	return &Session{
		ID:               ulid.Make(),
		UserID:           userID,
		TokenHash:        tokenHash,
		RefreshTokenHash: refreshTokenHash,
		RememberMe:       rememberMe,
		CreatedAt:        now,
		ExpiresAt:        now.Add(lifetime),
		RefreshExpiresAt: now.Add(cfg.RefreshLifetime),
		LastUsedAt:       now,
	}, nil
}

// IsExpiredAt reports whether the session token has expired at the given
// time. Expiry is exclusive: a session is still valid at exactly ExpiresAt.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsValidAt reports whether the session is usable: not revoked and not
// expired.
func (s *Session) IsValidAt(now time.Time) bool {
	return !s.Revoked && !s.IsExpiredAt(now)
}

// CanRefreshAt reports whether the refresh token is still usable.
func (s *Session) CanRefreshAt(now time.Time) bool {
	return !s.Revoked && !now.After(s.RefreshExpiresAt)
}

// NeedsRefreshAt reports whether the session has entered the trailing
// fraction of its lifetime where clients should proactively refresh.
func (s *Session) NeedsRefreshAt(now time.Time, fraction float64) bool {
	lifetime := s.ExpiresAt.Sub(s.CreatedAt)
	if lifetime <= 0 {
		return true
	}
	threshold := s.ExpiresAt.Add(-time.Duration(float64(lifetime) * fraction))
	return !now.Before(threshold)
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its session-token hash.
	// Returns ErrNotFound when no row matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// GetByRefreshTokenHash retrieves a session by its refresh-token hash.
	GetByRefreshTokenHash(ctx context.Context, refreshTokenHash string) (*Session, error)

	// GetByUser lists all non-revoked sessions for a user, newest first.
	GetByUser(ctx context.Context, userID ulid.ULID) ([]*Session, error)

	// UpdateLastUsed stamps last_used_at on a session.
	UpdateLastUsed(ctx context.Context, id ulid.ULID, at time.Time) error

	// Rotate atomically replaces a session's token hashes and expiry
	// times after a refresh, restamping the client's address and agent.
	// The old hashes stop matching in the same statement that installs
	// the new ones.
	Rotate(ctx context.Context, id ulid.ULID, tokenHash, refreshTokenHash, ipAddress, userAgent string, expiresAt, refreshExpiresAt, at time.Time) error

	// Revoke marks a session revoked. Returns ErrNotFound when the
	// session does not exist or is already revoked, so callers can keep
	// logout idempotent without a read-modify-write.
	Revoke(ctx context.Context, id ulid.ULID, at time.Time) error

	// RevokeAllForUser revokes every active session for a user and
	// returns how many were revoked.
	RevokeAllForUser(ctx context.Context, userID ulid.ULID, at time.Time) (int64, error)

	// DeleteExpired removes sessions whose refresh window has passed and
	// revoked sessions older than the retention cutoff. Returns the
	// number of rows deleted.
	DeleteExpired(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}
