// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
)

// TokenBytes is the entropy of every opaque token issued by this package:
// session tokens, refresh tokens, and one-time tokens.
// 32 bytes = 64 hex chars.
const TokenBytes = 32

// GenerateToken creates a secure random opaque token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is handed to the caller for out-of-band delivery;
// only the hash is ever stored.
func GenerateToken() (token, hash string, err error) {
	raw := make([]byte, TokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("AUTH_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(raw)
	hash = HashToken(token)

	return token, hash, nil
}

// HashToken computes the SHA256 hash of an opaque token. Lookups hash the
// presented token and match against the stored hash.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyTokenHash checks if the plaintext token matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifyTokenHash(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashToken(token)
	// Both are hex-encoded SHA256 hashes (64 chars), use constant-time compare
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
