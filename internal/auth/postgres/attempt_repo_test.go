// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyrm/accountd/internal/auth"
	authpg "github.com/veyrm/accountd/internal/auth/postgres"
)

func recordTestAttempt(t *testing.T, repo *authpg.LoginAttemptRepository, userID *ulid.ULID, identifier string, success bool, at time.Time) *auth.LoginAttempt {
	t.Helper()

	attempt := &auth.LoginAttempt{
		ID:          ulid.Make(),
		UserID:      userID,
		Identifier:  identifier,
		Success:     success,
		RemoteAddr:  "203.0.113.7",
		UserAgent:   "veyrm-client/1.1",
		AttemptedAt: at,
	}
	if !success {
		attempt.FailureReason = auth.ReasonBadCredentials
	}

	require.NoError(t, repo.Record(context.Background(), attempt))

	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM login_history WHERE id = $1`, attempt.ID.String())
	})

	return attempt
}

func TestLoginAttemptRepository_Record(t *testing.T) {
	ctx := context.Background()
	users := authpg.NewUserRepository(testPool)
	repo := authpg.NewLoginAttemptRepository(testPool)

	t.Run("records an attempt tied to a user", func(t *testing.T) {
		user := createTestUser(t, users, "attempt_user", "attempt_user@example.com")
		at := time.Now().UTC().Truncate(time.Microsecond)
		recordTestAttempt(t, repo, &user.ID, "attempt_user", true, at)

		attempts, err := repo.RecentForUser(ctx, user.ID, 10)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, "attempt_user", attempts[0].Identifier)
		assert.True(t, attempts[0].Success)
		assert.Equal(t, "203.0.113.7", attempts[0].RemoteAddr)
		assert.Equal(t, "veyrm-client/1.1", attempts[0].UserAgent)
		assert.Empty(t, attempts[0].FailureReason)
		require.NotNil(t, attempts[0].UserID)
		assert.Equal(t, user.ID, *attempts[0].UserID)
	})

	t.Run("links a successful attempt to its session", func(t *testing.T) {
		user := createTestUser(t, users, "attempt_sess_user", "attempt_sess@example.com")
		sessions := authpg.NewSessionRepository(testPool)
		session := createTestSession(t, sessions, user.ID)

		attempt := &auth.LoginAttempt{
			ID:          ulid.Make(),
			UserID:      &user.ID,
			Identifier:  "attempt_sess_user",
			Success:     true,
			RemoteAddr:  "203.0.113.7",
			UserAgent:   "veyrm-client/1.1",
			SessionID:   &session.ID,
			AttemptedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, repo.Record(ctx, attempt))
		t.Cleanup(func() {
			_, _ = testPool.Exec(ctx, `DELETE FROM login_history WHERE id = $1`, attempt.ID.String())
		})

		attempts, err := repo.RecentForUser(ctx, user.ID, 1)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		require.NotNil(t, attempts[0].SessionID)
		assert.Equal(t, session.ID, *attempts[0].SessionID)
	})

	t.Run("records an attempt with no matching account", func(t *testing.T) {
		attempt := recordTestAttempt(t, repo, nil, "ghost_user", false, time.Now().UTC())

		var storedUserID *string
		err := testPool.QueryRow(ctx,
			`SELECT user_id FROM login_history WHERE id = $1`, attempt.ID.String()).Scan(&storedUserID)
		require.NoError(t, err)
		assert.Nil(t, storedUserID)
	})
}

func TestLoginAttemptRepository_RecentForUser(t *testing.T) {
	ctx := context.Background()
	users := authpg.NewUserRepository(testPool)
	repo := authpg.NewLoginAttemptRepository(testPool)

	t.Run("returns newest first and respects limit", func(t *testing.T) {
		user := createTestUser(t, users, "attempt_recent_user", "attempt_recent@example.com")
		base := time.Now().UTC().Truncate(time.Microsecond)

		for i := range 5 {
			success := i%2 == 0
			recordTestAttempt(t, repo, &user.ID, "attempt_recent_user", success, base.Add(time.Duration(i)*time.Second))
		}

		attempts, err := repo.RecentForUser(ctx, user.ID, 3)
		require.NoError(t, err)
		require.Len(t, attempts, 3)
		assert.WithinDuration(t, base.Add(4*time.Second), attempts[0].AttemptedAt, time.Millisecond)
		assert.WithinDuration(t, base.Add(3*time.Second), attempts[1].AttemptedAt, time.Millisecond)
		assert.WithinDuration(t, base.Add(2*time.Second), attempts[2].AttemptedAt, time.Millisecond)
	})

	t.Run("returns empty for user with no history", func(t *testing.T) {
		user := createTestUser(t, users, "attempt_empty_user", "attempt_empty@example.com")

		attempts, err := repo.RecentForUser(ctx, user.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, attempts)
	})
}

func TestLoginAttemptRepository_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	users := authpg.NewUserRepository(testPool)
	repo := authpg.NewLoginAttemptRepository(testPool)

	t.Run("prunes only rows older than cutoff", func(t *testing.T) {
		user := createTestUser(t, users, "attempt_prune_user", "attempt_prune@example.com")
		now := time.Now().UTC().Truncate(time.Microsecond)

		recordTestAttempt(t, repo, &user.ID, "attempt_prune_user", false, now.Add(-100*24*time.Hour))
		recordTestAttempt(t, repo, &user.ID, "attempt_prune_user", false, now.Add(-95*24*time.Hour))
		kept := recordTestAttempt(t, repo, &user.ID, "attempt_prune_user", true, now)

		deleted, err := repo.DeleteBefore(ctx, now.Add(-90*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		attempts, err := repo.RecentForUser(ctx, user.ID, 10)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, kept.ID, attempts[0].ID)
	})
}
