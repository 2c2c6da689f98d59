// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/internal/auth"
)

// OneTimeTokenRepository implements auth.OneTimeTokenRepository using
// PostgreSQL.
type OneTimeTokenRepository struct {
	pool *pgxpool.Pool
}

var _ auth.OneTimeTokenRepository = (*OneTimeTokenRepository)(nil)

// NewOneTimeTokenRepository creates a new OneTimeTokenRepository.
func NewOneTimeTokenRepository(pool *pgxpool.Pool) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{pool: pool}
}

// Create stores a new token record.
func (r *OneTimeTokenRepository) Create(ctx context.Context, token *auth.OneTimeToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO one_time_tokens (
			id, user_id, purpose, token_hash, created_at, expires_at, used_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		token.ID.String(),
		token.UserID.String(),
		string(token.Purpose),
		token.TokenHash,
		token.CreatedAt,
		token.ExpiresAt,
		token.UsedAt,
	)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert one-time token").
			With("purpose", string(token.Purpose)).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a token by purpose and hash.
func (r *OneTimeTokenRepository) GetByTokenHash(ctx context.Context, purpose auth.TokenPurpose, tokenHash string) (*auth.OneTimeToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, purpose, token_hash, created_at, expires_at, used_at
		FROM one_time_tokens
		WHERE purpose = $1 AND token_hash = $2
	`, string(purpose), tokenHash)

	token, err := scanOneTimeToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").
			With("purpose", string(purpose)).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_FAILED").
			With("operation", "get token by hash").
			With("purpose", string(purpose)).
			Wrap(err)
	}
	return token, nil
}

// MarkUsed consumes a token. The used_at guard is part of the UPDATE, so
// concurrent redemptions cannot both succeed.
func (r *OneTimeTokenRepository) MarkUsed(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE one_time_tokens SET used_at = $2
		WHERE id = $1 AND used_at IS NULL
	`, id.String(), at)
	if err != nil {
		return oops.Code("TOKEN_MARK_USED_FAILED").
			With("operation", "mark token used").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TOKEN_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// InvalidateForUser marks all unredeemed tokens of a purpose as used.
func (r *OneTimeTokenRepository) InvalidateForUser(ctx context.Context, userID ulid.ULID, purpose auth.TokenPurpose, at time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE one_time_tokens SET used_at = $3
		WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL
	`, userID.String(), string(purpose), at)
	if err != nil {
		return 0, oops.Code("TOKEN_INVALIDATE_FAILED").
			With("operation", "invalidate tokens for user").
			With("user_id", userID.String()).
			With("purpose", string(purpose)).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes tokens past their expiry.
func (r *OneTimeTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM one_time_tokens WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanOneTimeToken scans a single row into a OneTimeToken.
// Callers are responsible for handling pgx.ErrNoRows.
func scanOneTimeToken(row pgx.Row) (*auth.OneTimeToken, error) {
	var (
		idStr     string
		userIDStr string
		purpose   string
		token     auth.OneTimeToken
	)

	err := row.Scan(
		&idStr,
		&userIDStr,
		&purpose,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TOKEN_SCAN_FAILED").
			With("operation", "parse token id").
			With("id", idStr).
			Wrap(err)
	}
	token.ID = id

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("TOKEN_SCAN_FAILED").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	token.UserID = userID
	token.Purpose = auth.TokenPurpose(purpose)

	return &token, nil
}
