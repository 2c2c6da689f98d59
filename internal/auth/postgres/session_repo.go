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

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

var _ auth.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_sessions (
			id, user_id, token_hash, refresh_token_hash, remember_me,
			ip_address, user_agent,
			created_at, expires_at, refresh_expires_at, last_used_at,
			revoked, revoked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.RefreshTokenHash,
		session.RememberMe,
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt,
		session.ExpiresAt,
		session.RefreshExpiresAt,
		session.LastUsedAt,
		session.Revoked,
		session.RevokedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its session-token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, selectSession+`WHERE token_hash = $1`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return session, nil
}

// GetByRefreshTokenHash retrieves a session by its refresh-token hash.
func (r *SessionRepository) GetByRefreshTokenHash(ctx context.Context, refreshTokenHash string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, selectSession+`WHERE refresh_token_hash = $1`, refreshTokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by refresh token hash").
			Wrap(err)
	}
	return session, nil
}

// GetByUser lists all non-revoked sessions for a user, newest first.
func (r *SessionRepository) GetByUser(ctx context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	rows, err := r.pool.Query(ctx, selectSession+`
		WHERE user_id = $1 AND NOT revoked
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "list sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, oops.Code("SESSION_LIST_FAILED").
				With("operation", "scan session row").
				Wrap(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "iterate session rows").
			Wrap(err)
	}
	return sessions, nil
}

// UpdateLastUsed stamps last_used_at on a session.
func (r *SessionRepository) UpdateLastUsed(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET last_used_at = $2
		WHERE id = $1
	`, id.String(), at)
	if err != nil {
		return oops.Code("SESSION_UPDATE_LAST_USED_FAILED").
			With("operation", "update last used").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Rotate atomically installs fresh token hashes and expiry times and
// restamps the client audit columns. The revoked guard makes a raced
// revocation win over the rotation.
func (r *SessionRepository) Rotate(ctx context.Context, id ulid.ULID, tokenHash, refreshTokenHash, ipAddress, userAgent string, expiresAt, refreshExpiresAt, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET
			token_hash = $2,
			refresh_token_hash = $3,
			ip_address = $4,
			user_agent = $5,
			expires_at = $6,
			refresh_expires_at = $7,
			last_used_at = $8
		WHERE id = $1 AND NOT revoked
	`, id.String(), tokenHash, refreshTokenHash, ipAddress, userAgent, expiresAt, refreshExpiresAt, at)
	if err != nil {
		return oops.Code("SESSION_ROTATE_FAILED").
			With("operation", "rotate session tokens").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Revoke marks a session revoked. Already-revoked sessions report
// ErrNotFound so callers can stay idempotent without a read first.
func (r *SessionRepository) Revoke(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET revoked = TRUE, revoked_at = $2
		WHERE id = $1 AND NOT revoked
	`, id.String(), at)
	if err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "revoke session").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// RevokeAllForUser revokes every active session for a user.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID ulid.ULID, at time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET revoked = TRUE, revoked_at = $2
		WHERE user_id = $1 AND NOT revoked
	`, userID.String(), at)
	if err != nil {
		return 0, oops.Code("SESSION_REVOKE_ALL_FAILED").
			With("operation", "revoke all sessions for user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes sessions whose refresh window has passed and
// revoked sessions older than the retention cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM user_sessions
		WHERE refresh_expires_at < $1
		   OR (revoked AND revoked_at < $2)
	`, now, revokedBefore)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

const selectSession = `
	SELECT id, user_id, token_hash, refresh_token_hash, remember_me,
	       ip_address, user_agent,
	       created_at, expires_at, refresh_expires_at, last_used_at,
	       revoked, revoked_at
	FROM user_sessions
	`

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr     string
		userIDStr string
		session   auth.Session
	)

	err := row.Scan(
		&idStr,
		&userIDStr,
		&session.TokenHash,
		&session.RefreshTokenHash,
		&session.RememberMe,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.RefreshExpiresAt,
		&session.LastUsedAt,
		&session.Revoked,
		&session.RevokedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}
	session.ID = id

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	session.UserID = userID

	return &session, nil
}
