// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package auth provides account authentication and session management
// for the Veyrm game.
//
// # Domain Types
//
// Domain types (User, Session, OneTimeToken, LoginAttempt) should be
// created using their respective constructors:
//   - NewUser - creates a User with a validated username and password hash
//   - NewSession - creates a Session with a validated owner and expiry
//   - NewOneTimeToken - creates a OneTimeToken bound to a user and purpose
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Service
//
// Service coordinates the flows: registration, login with lockout,
// session validation and refresh, logout, password change/reset, and
// email verification. Expected failures never surface as errors: every
// credential-facing operation returns a result value carrying a success
// flag, a failure kind, and a human-readable message. Backend failures
// are logged and reported as a generic system failure so that internal
// details never cross the boundary.
package auth
