// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/internal/auth"
)

// LoginAttemptRepository implements auth.LoginAttemptRepository using
// PostgreSQL.
type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

var _ auth.LoginAttemptRepository = (*LoginAttemptRepository)(nil)

// NewLoginAttemptRepository creates a new LoginAttemptRepository.
func NewLoginAttemptRepository(pool *pgxpool.Pool) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: pool}
}

// Record appends an attempt to the audit trail.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *auth.LoginAttempt) error {
	var userID *string
	if attempt.UserID != nil {
		s := attempt.UserID.String()
		userID = &s
	}
	var sessionID *string
	if attempt.SessionID != nil {
		s := attempt.SessionID.String()
		sessionID = &s
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_history (
			id, user_id, identifier, success, remote_addr, user_agent,
			failure_reason, session_id, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		attempt.ID.String(),
		userID,
		attempt.Identifier,
		attempt.Success,
		attempt.RemoteAddr,
		attempt.UserAgent,
		attempt.FailureReason,
		sessionID,
		attempt.AttemptedAt,
	)
	if err != nil {
		return oops.Code("ATTEMPT_RECORD_FAILED").
			With("operation", "insert login attempt").
			Wrap(err)
	}
	return nil
}

// RecentForUser lists the newest attempts for a user, newest first.
func (r *LoginAttemptRepository) RecentForUser(ctx context.Context, userID ulid.ULID, limit int) ([]*auth.LoginAttempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, identifier, success, remote_addr, user_agent,
		       failure_reason, session_id, attempted_at
		FROM login_history
		WHERE user_id = $1
		ORDER BY attempted_at DESC
		LIMIT $2
	`, userID.String(), limit)
	if err != nil {
		return nil, oops.Code("ATTEMPT_LIST_FAILED").
			With("operation", "list login attempts").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var attempts []*auth.LoginAttempt
	for rows.Next() {
		attempt, err := scanLoginAttempt(rows)
		if err != nil {
			return nil, oops.Code("ATTEMPT_LIST_FAILED").
				With("operation", "scan login attempt row").
				Wrap(err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ATTEMPT_LIST_FAILED").
			With("operation", "iterate login attempt rows").
			Wrap(err)
	}
	return attempts, nil
}

// DeleteBefore prunes audit rows older than the cutoff.
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM login_history WHERE attempted_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("ATTEMPT_DELETE_FAILED").
			With("operation", "delete login attempts before cutoff").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanLoginAttempt scans a single row into a LoginAttempt.
func scanLoginAttempt(row pgx.Row) (*auth.LoginAttempt, error) {
	var (
		idStr        string
		userIDStr    *string
		sessionIDStr *string
		attempt      auth.LoginAttempt
	)

	err := row.Scan(
		&idStr,
		&userIDStr,
		&attempt.Identifier,
		&attempt.Success,
		&attempt.RemoteAddr,
		&attempt.UserAgent,
		&attempt.FailureReason,
		&sessionIDStr,
		&attempt.AttemptedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ATTEMPT_SCAN_FAILED").
			With("operation", "parse attempt id").
			With("id", idStr).
			Wrap(err)
	}
	attempt.ID = id

	if userIDStr != nil {
		userID, err := ulid.Parse(*userIDStr)
		if err != nil {
			return nil, oops.Code("ATTEMPT_SCAN_FAILED").
				With("operation", "parse user id").
				With("user_id", *userIDStr).
				Wrap(err)
		}
		attempt.UserID = &userID
	}

	if sessionIDStr != nil {
		sessionID, err := ulid.Parse(*sessionIDStr)
		if err != nil {
			return nil, oops.Code("ATTEMPT_SCAN_FAILED").
				With("operation", "parse session id").
				With("session_id", *sessionIDStr).
				Wrap(err)
		}
		attempt.SessionID = &sessionID
	}

	return &attempt, nil
}
