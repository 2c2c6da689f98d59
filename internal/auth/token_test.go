// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyrm/accountd/internal/auth"
)

func TestGenerateToken(t *testing.T) {
	t.Run("produces 64-char hex token and matching hash", func(t *testing.T) {
		token, hash, err := auth.GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.Len(t, hash, 64)
		assert.Equal(t, auth.HashToken(token), hash)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		token1, _, err := auth.GenerateToken()
		require.NoError(t, err)
		token2, _, err := auth.GenerateToken()
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})
}

func TestVerifyTokenHash(t *testing.T) {
	token, hash, err := auth.GenerateToken()
	require.NoError(t, err)

	t.Run("matching token verifies", func(t *testing.T) {
		assert.True(t, auth.VerifyTokenHash(token, hash))
	})

	t.Run("wrong token fails", func(t *testing.T) {
		other, _, err := auth.GenerateToken()
		require.NoError(t, err)
		assert.False(t, auth.VerifyTokenHash(other, hash))
	})

	t.Run("empty inputs fail", func(t *testing.T) {
		assert.False(t, auth.VerifyTokenHash("", hash))
		assert.False(t, auth.VerifyTokenHash(token, ""))
	})
}
