// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ auth.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. Unique-constraint violations are translated to
// *auth.DuplicateError so the service can tell the player which field
// collided.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, salt, email_verified,
			account_locked, failed_login_attempts, last_failed_login,
			last_login, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.EmailVerified,
		user.AccountLocked,
		user.FailedLoginAttempts,
		user.LastFailedLogin,
		user.LastLogin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return &auth.DuplicateError{Field: auth.DuplicateEmail}
			}
			return &auth.DuplicateError{Field: auth.DuplicateUsername}
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`WHERE id = $1`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username (case-sensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`WHERE username = $1`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`WHERE LOWER(email) = LOWER($1)`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// UpdatePassword replaces the password hash and salt.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash, salt string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, salt = $3, updated_at = $4
		WHERE id = $1
	`, id.String(), passwordHash, salt, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET last_login = $2, updated_at = $2
		WHERE id = $1
	`, id.String(), at)
	if err != nil {
		return oops.Code("USER_UPDATE_LAST_LOGIN_FAILED").
			With("operation", "update last login").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// IncrementFailedLogins bumps the failure counter atomically and returns
// the new count.
func (r *UserRepository) IncrementFailedLogins(ctx context.Context, id ulid.ULID, at time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET
			failed_login_attempts = failed_login_attempts + 1,
			last_failed_login = $2,
			updated_at = $2
		WHERE id = $1
		RETURNING failed_login_attempts
	`, id.String(), at).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("USER_INCREMENT_FAILED_LOGINS_FAILED").
			With("operation", "increment failed logins").
			With("id", id.String()).
			Wrap(err)
	}
	return count, nil
}

// ResetFailedLogins zeroes the failure counter and clears the failure
// timestamp.
func (r *UserRepository) ResetFailedLogins(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET
			failed_login_attempts = 0,
			last_failed_login = NULL,
			updated_at = $2
		WHERE id = $1
	`, id.String(), time.Now())
	if err != nil {
		return oops.Code("USER_RESET_FAILED_LOGINS_FAILED").
			With("operation", "reset failed logins").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetAccountLocked sets or clears the account_locked flag.
func (r *UserRepository) SetAccountLocked(ctx context.Context, id ulid.ULID, locked bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET account_locked = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), locked, time.Now())
	if err != nil {
		return oops.Code("USER_SET_ACCOUNT_LOCKED_FAILED").
			With("operation", "set account locked").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// MarkEmailVerified sets email_verified.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET email_verified = TRUE, updated_at = $2
		WHERE id = $1
	`, id.String(), time.Now())
	if err != nil {
		return oops.Code("USER_MARK_EMAIL_VERIFIED_FAILED").
			With("operation", "mark email verified").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

const selectUser = `
	SELECT id, username, email, password_hash, salt, email_verified,
	       account_locked, failed_login_attempts, last_failed_login,
	       last_login, created_at, updated_at
	FROM users
	`

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr string
		user  auth.User
	)

	err := row.Scan(
		&idStr,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.EmailVerified,
		&user.AccountLocked,
		&user.FailedLoginAttempts,
		&user.LastFailedLogin,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}
	user.ID = id

	return &user, nil
}
