// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenPurpose distinguishes the one-time token flows.
type TokenPurpose string

const (
	// PurposePasswordReset tokens are issued by RequestPasswordReset and
	// consumed by ResetPassword.
	PurposePasswordReset TokenPurpose = "password_reset"

	// PurposeEmailVerification tokens are issued at registration and
	// consumed by VerifyEmail.
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// Valid reports whether p is a known purpose.
func (p TokenPurpose) Valid() bool {
	return p == PurposePasswordReset || p == PurposeEmailVerification
}

// OneTimeToken is a single-use credential for password reset or email
// verification. Used tokens are kept (with used_at set) for audit; the
// cleanup sweep removes them once expired.
type OneTimeToken struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	Purpose   TokenPurpose
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// NewOneTimeToken creates a validated token record for a user.
func NewOneTimeToken(userID ulid.ULID, purpose TokenPurpose, tokenHash string, ttl time.Duration) (*OneTimeToken, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TOKEN_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if !purpose.Valid() {
		return nil, oops.Code("TOKEN_INVALID_PURPOSE").
			With("purpose", string(purpose)).
			Errorf("unknown token purpose")
	}
	if tokenHash == "" {
		return nil, oops.Code("TOKEN_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if ttl <= 0 {
		return nil, oops.Code("TOKEN_INVALID_TTL").Errorf("token lifetime must be positive")
	}

	now := time.Now()
	return &OneTimeToken{
		ID:        ulid.Make(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// RedeemableAt reports whether the token can still be consumed: never used
// and not expired.
func (t *OneTimeToken) RedeemableAt(now time.Time) bool {
	return t.UsedAt == nil && !now.After(t.ExpiresAt)
}

// OneTimeTokenRepository manages one-time token persistence.
type OneTimeTokenRepository interface {
	// Create stores a new token record.
	Create(ctx context.Context, token *OneTimeToken) error

	// GetByTokenHash retrieves a token by purpose and hash. Returns
	// ErrNotFound when no row matches.
	GetByTokenHash(ctx context.Context, purpose TokenPurpose, tokenHash string) (*OneTimeToken, error)

	// MarkUsed consumes a token. The guard on used_at is part of the
	// UPDATE, so two concurrent redemptions cannot both succeed; the
	// loser gets ErrNotFound.
	MarkUsed(ctx context.Context, id ulid.ULID, at time.Time) error

	// InvalidateForUser marks all unredeemed tokens of a purpose as used,
	// so issuing a new reset token retires any earlier one.
	InvalidateForUser(ctx context.Context, userID ulid.ULID, purpose TokenPurpose, at time.Time) (int64, error)

	// DeleteExpired removes tokens past their expiry. Returns the number
	// of rows deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
