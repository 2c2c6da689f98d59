// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyrm/accountd/internal/auth"
)

func TestNewSession(t *testing.T) {
	cfg := auth.DefaultConfig()
	userID := ulid.Make()

	t.Run("standard session gets session lifetime", func(t *testing.T) {
		session, err := auth.NewSession(userID, "tokenhash", "refreshhash", false, cfg)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
		assert.False(t, session.RememberMe)
		assert.WithinDuration(t, session.CreatedAt.Add(cfg.SessionLifetime), session.ExpiresAt, time.Second)
		assert.WithinDuration(t, session.CreatedAt.Add(cfg.RefreshLifetime), session.RefreshExpiresAt, time.Second)
	})

	t.Run("remember-me session lives as long as refresh token", func(t *testing.T) {
		session, err := auth.NewSession(userID, "tokenhash", "refreshhash", true, cfg)
		require.NoError(t, err)
		assert.True(t, session.RememberMe)
		assert.WithinDuration(t, session.CreatedAt.Add(cfg.RefreshLifetime), session.ExpiresAt, time.Second)
	})

	t.Run("rejects zero user ID", func(t *testing.T) {
		_, err := auth.NewSession(ulid.ULID{}, "tokenhash", "refreshhash", false, cfg)
		assert.Error(t, err)
	})

	t.Run("rejects empty token hashes", func(t *testing.T) {
		_, err := auth.NewSession(userID, "", "refreshhash", false, cfg)
		assert.Error(t, err)
		_, err = auth.NewSession(userID, "tokenhash", "", false, cfg)
		assert.Error(t, err)
	})
}

func TestSessionLifecycle(t *testing.T) {
	cfg := auth.DefaultConfig()
	session, err := auth.NewSession(ulid.Make(), "tokenhash", "refreshhash", false, cfg)
	require.NoError(t, err)

	t.Run("valid within lifetime", func(t *testing.T) {
		assert.True(t, session.IsValidAt(session.CreatedAt.Add(time.Hour)))
	})

	t.Run("valid at exact expiry instant", func(t *testing.T) {
		assert.True(t, session.IsValidAt(session.ExpiresAt))
		assert.False(t, session.IsExpiredAt(session.ExpiresAt))
	})

	t.Run("expired past lifetime", func(t *testing.T) {
		at := session.ExpiresAt.Add(time.Second)
		assert.True(t, session.IsExpiredAt(at))
		assert.False(t, session.IsValidAt(at))
	})

	t.Run("revoked session is invalid even when fresh", func(t *testing.T) {
		revoked := *session
		revoked.Revoked = true
		assert.False(t, revoked.IsValidAt(revoked.CreatedAt.Add(time.Minute)))
	})

	t.Run("refresh works past session expiry", func(t *testing.T) {
		at := session.ExpiresAt.Add(time.Hour)
		assert.True(t, session.CanRefreshAt(at))
	})

	t.Run("refresh fails past refresh expiry", func(t *testing.T) {
		assert.False(t, session.CanRefreshAt(session.RefreshExpiresAt.Add(time.Second)))
	})
}

func TestSessionNeedsRefresh(t *testing.T) {
	cfg := auth.DefaultConfig()
	session, err := auth.NewSession(ulid.Make(), "tokenhash", "refreshhash", false, cfg)
	require.NoError(t, err)

	lifetime := session.ExpiresAt.Sub(session.CreatedAt)

	t.Run("no hint early in the lifetime", func(t *testing.T) {
		assert.False(t, session.NeedsRefreshAt(session.CreatedAt.Add(lifetime/2), 0.1))
	})

	t.Run("hint in the trailing fraction", func(t *testing.T) {
		at := session.ExpiresAt.Add(-time.Duration(float64(lifetime) * 0.05))
		assert.True(t, session.NeedsRefreshAt(at, 0.1))
	})

	t.Run("hint exactly at threshold", func(t *testing.T) {
		at := session.ExpiresAt.Add(-time.Duration(float64(lifetime) * 0.1))
		assert.True(t, session.NeedsRefreshAt(at, 0.1))
	})
}
