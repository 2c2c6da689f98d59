// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import "github.com/oklog/ulid/v2"

// FailureKind classifies why a credential-facing operation failed. The
// Message carried alongside is safe to show to the player; the kind tells
// the client layer how to react (re-prompt, back off, show a form error).
type FailureKind string

const (
	// FailureNone means the operation succeeded.
	FailureNone FailureKind = ""

	// FailureValidation means the input broke a validation rule.
	FailureValidation FailureKind = "validation"

	// FailureDuplicate means the username or email is already taken.
	FailureDuplicate FailureKind = "duplicate"

	// FailureAuth means the credentials were wrong or the account is
	// locked. The message never says which.
	FailureAuth FailureKind = "auth"

	// FailureToken means a session, refresh, or one-time token was
	// invalid, expired, or revoked.
	FailureToken FailureKind = "token"

	// FailureSystem means a backend error. Details go to the log, not
	// the player.
	FailureSystem FailureKind = "system"
)

// Player-facing messages. Credential failures share one generic message so
// responses cannot be used to probe which accounts exist.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgAccountLocked      = "Account is temporarily locked. Try again later"
	msgInvalidSession     = "Session is invalid or expired"
	msgInvalidToken       = "Token is invalid or expired"
	msgSystemError        = "Something went wrong. Please try again"
)

// RegisterResult reports the outcome of a registration attempt. On success
// the plaintext verification token is returned for out-of-band delivery.
type RegisterResult struct {
	Success           bool
	Kind              FailureKind
	Message           string
	UserID            ulid.ULID
	VerificationToken string
}

// LoginResult reports the outcome of a login attempt. Tokens are plaintext
// and are never persisted in this form.
type LoginResult struct {
	Success      bool
	Kind         FailureKind
	Message      string
	UserID       ulid.ULID
	SessionToken string
	RefreshToken string
}

// SessionValidation reports the outcome of validating a session token.
// NeedsRefresh is a hint: set when the session is in the trailing fraction
// of its lifetime, and also when a known session has just expired but its
// refresh token may still work.
type SessionValidation struct {
	Valid        bool
	Message      string
	UserID       ulid.ULID
	SessionID    ulid.ULID
	NeedsRefresh bool
}

// ChangeResult reports the outcome of a password change, reset, or email
// verification.
type ChangeResult struct {
	Success bool
	Kind    FailureKind
	Message string
}

func failRegister(kind FailureKind, message string) RegisterResult {
	return RegisterResult{Kind: kind, Message: message}
}

func failLogin(kind FailureKind, message string) LoginResult {
	return LoginResult{Kind: kind, Message: message}
}

func failChange(kind FailureKind, message string) ChangeResult {
	return ChangeResult{Kind: kind, Message: message}
}
