// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/pkg/errutil"
)

// Service provides account and session operations. Credential-facing
// methods report expected failures through result values, never through
// errors; backend errors are logged and surfaced as a generic message.
type Service struct {
	cfg      Config
	users    UserRepository
	sessions SessionRepository
	tokens   OneTimeTokenRepository
	attempts LoginAttemptRepository
	hasher   PasswordHasher
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new Service with the default logger.
func NewService(cfg Config, users UserRepository, sessions SessionRepository, tokens OneTimeTokenRepository, attempts LoginAttemptRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(cfg, users, sessions, tokens, attempts, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(cfg Config, users UserRepository, sessions SessionRepository, tokens OneTimeTokenRepository, attempts LoginAttemptRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if users == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("user repository cannot be nil")
	}
	if sessions == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("session repository cannot be nil")
	}
	if tokens == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("token repository cannot be nil")
	}
	if attempts == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("login attempt repository cannot be nil")
	}
	if hasher == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("password hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		attempts: attempts,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new account. On success an email-verification token
// is issued and returned in plaintext for out-of-band delivery.
func (s *Service) Register(ctx context.Context, username, email, password, confirmation string) RegisterResult {
	if err := ValidateRegistrationData(username, email, password, confirmation, s.cfg); err != nil {
		Registrations.WithLabelValues(OutcomeValidation).Inc()
		return failRegister(FailureValidation, err.Error())
	}

	// Duplicates are checked by lookup before the insert, username before
	// email, so the caller gets a field-specific message. The unique
	// constraints stay as the backstop for insert races.
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		Registrations.WithLabelValues(OutcomeDuplicate).Inc()
		return failRegister(FailureDuplicate, "Username already exists")
	} else if !errors.Is(err, ErrNotFound) {
		errutil.LogError(s.logger, "registration username lookup failed", err)
		Registrations.WithLabelValues(OutcomeSystem).Inc()
		return failRegister(FailureSystem, msgSystemError)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		Registrations.WithLabelValues(OutcomeDuplicate).Inc()
		return failRegister(FailureDuplicate, "Email already registered")
	} else if !errors.Is(err, ErrNotFound) {
		errutil.LogError(s.logger, "registration email lookup failed", err)
		Registrations.WithLabelValues(OutcomeSystem).Inc()
		return failRegister(FailureSystem, msgSystemError)
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		errutil.LogError(s.logger, "password hashing failed", err)
		Registrations.WithLabelValues(OutcomeSystem).Inc()
		return failRegister(FailureSystem, msgSystemError)
	}

	user, err := NewUser(username, email, hash, salt)
	if err != nil {
		errutil.LogError(s.logger, "user construction failed", err)
		Registrations.WithLabelValues(OutcomeSystem).Inc()
		return failRegister(FailureSystem, msgSystemError)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if dup, ok := AsDuplicate(err); ok {
			Registrations.WithLabelValues(OutcomeDuplicate).Inc()
			if dup.Field == DuplicateEmail {
				return failRegister(FailureDuplicate, "Email already registered")
			}
			return failRegister(FailureDuplicate, "Username already exists")
		}
		errutil.LogError(s.logger, "user create failed", err)
		Registrations.WithLabelValues(OutcomeSystem).Inc()
		return failRegister(FailureSystem, msgSystemError)
	}

	Registrations.WithLabelValues(OutcomeSuccess).Inc()

	// Verification token issuance is best-effort: the account exists
	// either way, and a fresh token can be requested later.
	verification, err := s.issueOneTimeToken(ctx, user.ID, PurposeEmailVerification, s.cfg.VerificationTokenTTL)
	if err != nil {
		errutil.LogError(s.logger, "verification token issue failed", err)
		verification = ""
	}

	s.logger.Info("account registered", "user_id", user.ID.String(), "username", user.Username)

	return RegisterResult{
		Success:           true,
		UserID:            user.ID,
		VerificationToken: verification,
	}
}

// Login authenticates a user by username or email and creates a session.
// The identifier is treated as an email when it contains '@'. Failures
// share one generic message so responses cannot reveal which accounts
// exist; the lockout message appears only for a genuinely locked account.
func (s *Service) Login(ctx context.Context, identifier, password string, rememberMe bool, remoteAddr, userAgent string) LoginResult {
	if err := ValidateLoginCredentials(identifier, password); err != nil {
		LoginAttempts.WithLabelValues(OutcomeValidation).Inc()
		return failLogin(FailureValidation, err.Error())
	}

	user, err := s.lookupByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, ErrNotFound) {
		errutil.LogError(s.logger, "login lookup failed", err)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	now := s.now()

	if user != nil && user.IsLockedOutAt(now, s.cfg.LockoutDuration) {
		s.recordAttempt(ctx, &user.ID, identifier, false, remoteAddr, userAgent, ReasonAccountLocked, nil)
		LoginAttempts.WithLabelValues(OutcomeLocked).Inc()
		return failLogin(FailureAuth, msgAccountLocked)
	}

	// Always run a verification, against a dummy hash when the lookup
	// missed, so response time does not depend on account existence.
	targetHash := dummyPasswordHash
	if user != nil {
		targetHash = user.PasswordHash
	}
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && user != nil {
		errutil.LogError(s.logger, "password verify failed", verifyErr)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	if user == nil || !valid {
		if user != nil {
			s.registerFailure(ctx, user, now)
			s.recordAttempt(ctx, &user.ID, identifier, false, remoteAddr, userAgent, ReasonBadCredentials, nil)
		} else {
			s.recordAttempt(ctx, nil, identifier, false, remoteAddr, userAgent, ReasonUnknownAccount, nil)
		}
		LoginAttempts.WithLabelValues(OutcomeAuth).Inc()
		return failLogin(FailureAuth, msgInvalidCredentials)
	}

	// Success. Clear a lapsed lockout and the failure counter.
	if user.AccountLocked {
		if err := s.users.SetAccountLocked(ctx, user.ID, false); err != nil {
			errutil.LogError(s.logger, "clear account lock failed", err)
		}
	}
	if user.FailedLoginAttempts > 0 {
		if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
			errutil.LogError(s.logger, "reset failed logins failed", err)
		}
	}

	// Transparent hash upgrade for legacy hashes. Best effort.
	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, newSalt, hashErr := s.hasher.Hash(password); hashErr == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, newHash, newSalt); err != nil {
				errutil.LogError(s.logger, "hash upgrade failed", err)
			}
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		errutil.LogError(s.logger, "update last login failed", err)
	}

	sessionToken, sessionHash, err := GenerateToken()
	if err != nil {
		errutil.LogError(s.logger, "session token generation failed", err)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}
	refreshToken, refreshHash, err := GenerateToken()
	if err != nil {
		errutil.LogError(s.logger, "refresh token generation failed", err)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	session, err := NewSession(user.ID, sessionHash, refreshHash, rememberMe, s.cfg)
	if err != nil {
		errutil.LogError(s.logger, "session construction failed", err)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}
	session.IPAddress = remoteAddr
	session.UserAgent = userAgent
	if err := s.sessions.Create(ctx, session); err != nil {
		errutil.LogError(s.logger, "session create failed", err)
		LoginAttempts.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	// The success audit row carries the session it produced.
	s.recordAttempt(ctx, &user.ID, identifier, true, remoteAddr, userAgent, "", &session.ID)

	LoginAttempts.WithLabelValues(OutcomeSuccess).Inc()
	s.logger.Info("login succeeded", "user_id", user.ID.String(), "remember_me", rememberMe)

	return LoginResult{
		Success:      true,
		UserID:       user.ID,
		SessionToken: sessionToken,
		RefreshToken: refreshToken,
	}
}

// ValidateSession checks a session token. Invalid, revoked, and unknown
// tokens all yield the same message; a known session that has merely
// expired additionally hints that a refresh may still work.
func (s *Service) ValidateSession(ctx context.Context, token string) SessionValidation {
	if token == "" {
		SessionValidations.WithLabelValues(OutcomeToken).Inc()
		return SessionValidation{Message: msgInvalidSession}
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogError(s.logger, "session lookup failed", err)
			SessionValidations.WithLabelValues(OutcomeSystem).Inc()
			return SessionValidation{Message: msgInvalidSession}
		}
		SessionValidations.WithLabelValues(OutcomeToken).Inc()
		return SessionValidation{Message: msgInvalidSession}
	}

	now := s.now()
	if session.Revoked {
		SessionValidations.WithLabelValues(OutcomeToken).Inc()
		return SessionValidation{Message: msgInvalidSession}
	}
	if session.IsExpiredAt(now) {
		SessionValidations.WithLabelValues(OutcomeToken).Inc()
		return SessionValidation{
			Message:      msgInvalidSession,
			NeedsRefresh: session.CanRefreshAt(now),
		}
	}

	if err := s.sessions.UpdateLastUsed(ctx, session.ID, now); err != nil {
		errutil.LogError(s.logger, "update last used failed", err)
	}

	SessionValidations.WithLabelValues(OutcomeSuccess).Inc()
	return SessionValidation{
		Valid:        true,
		UserID:       session.UserID,
		SessionID:    session.ID,
		NeedsRefresh: session.NeedsRefreshAt(now, s.cfg.RefreshHintFraction),
	}
}

// RefreshSession exchanges a refresh token for a fresh session token pair.
// Both tokens rotate: the presented refresh token stops working the moment
// the exchange succeeds.
func (s *Service) RefreshSession(ctx context.Context, refreshToken, remoteAddr, userAgent string) LoginResult {
	if refreshToken == "" {
		SessionRefreshes.WithLabelValues(OutcomeToken).Inc()
		return failLogin(FailureToken, msgInvalidSession)
	}

	session, err := s.sessions.GetByRefreshTokenHash(ctx, HashToken(refreshToken))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			errutil.LogError(s.logger, "refresh lookup failed", err)
			SessionRefreshes.WithLabelValues(OutcomeSystem).Inc()
			return failLogin(FailureSystem, msgSystemError)
		}
		SessionRefreshes.WithLabelValues(OutcomeToken).Inc()
		return failLogin(FailureToken, msgInvalidSession)
	}

	now := s.now()
	if !session.CanRefreshAt(now) {
		SessionRefreshes.WithLabelValues(OutcomeToken).Inc()
		return failLogin(FailureToken, msgInvalidSession)
	}

	newToken, newTokenHash, err := GenerateToken()
	if err != nil {
		errutil.LogError(s.logger, "session token generation failed", err)
		SessionRefreshes.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}
	newRefresh, newRefreshHash, err := GenerateToken()
	if err != nil {
		errutil.LogError(s.logger, "refresh token generation failed", err)
		SessionRefreshes.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	lifetime := s.cfg.SessionLifetime
	if session.RememberMe {
		lifetime = s.cfg.RefreshLifetime
	}
	expiresAt := now.Add(lifetime)
	refreshExpiresAt := now.Add(s.cfg.RefreshLifetime)

	if err := s.sessions.Rotate(ctx, session.ID, newTokenHash, newRefreshHash, remoteAddr, userAgent, expiresAt, refreshExpiresAt, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race with another refresh or a revocation.
			SessionRefreshes.WithLabelValues(OutcomeToken).Inc()
			return failLogin(FailureToken, msgInvalidSession)
		}
		errutil.LogError(s.logger, "session rotate failed", err)
		SessionRefreshes.WithLabelValues(OutcomeSystem).Inc()
		return failLogin(FailureSystem, msgSystemError)
	}

	SessionRefreshes.WithLabelValues(OutcomeSuccess).Inc()
	return LoginResult{
		Success:      true,
		UserID:       session.UserID,
		SessionToken: newToken,
		RefreshToken: newRefresh,
	}
}

// Logout revokes the session behind a session token. It reports whether
// this call did the revoking: unknown and already-revoked tokens return
// false without error, so repeated logouts stay harmless but observable.
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "revoke session").
			With("session_id", session.ID.String()).
			Wrap(err)
	}

	s.logger.Info("session revoked", "session_id", session.ID.String(), "user_id", session.UserID.String())
	return true, nil
}

// LogoutAllSessions revokes every active session for a user and returns
// how many were revoked.
func (s *Service) LogoutAllSessions(ctx context.Context, userID ulid.ULID) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return 0, oops.Code("AUTH_LOGOUT_ALL_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if count > 0 {
		s.logger.Info("all sessions revoked", "user_id", userID.String(), "count", count)
	}
	return count, nil
}

// ActiveSessions lists a user's non-revoked sessions, newest first.
func (s *Service) ActiveSessions(ctx context.Context, userID ulid.ULID) ([]*Session, error) {
	sessions, err := s.sessions.GetByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_LIST_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return sessions, nil
}

// ChangePassword changes a user's password after re-verifying the current
// one, then revokes every session so stolen tokens die with the old
// credential.
func (s *Service) ChangePassword(ctx context.Context, userID ulid.ULID, currentPassword, newPassword, confirmation string) ChangeResult {
	if err := ValidatePassword(newPassword, s.cfg); err != nil {
		return failChange(FailureValidation, err.Error())
	}
	if err := ValidatePasswordConfirmation(newPassword, confirmation); err != nil {
		return failChange(FailureValidation, err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failChange(FailureAuth, msgInvalidCredentials)
		}
		errutil.LogError(s.logger, "change password lookup failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	valid, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		errutil.LogError(s.logger, "password verify failed", err)
		return failChange(FailureSystem, msgSystemError)
	}
	if !valid {
		return failChange(FailureAuth, "Current password is incorrect")
	}

	hash, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		errutil.LogError(s.logger, "password hashing failed", err)
		return failChange(FailureSystem, msgSystemError)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, salt); err != nil {
		errutil.LogError(s.logger, "password update failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	if _, err := s.sessions.RevokeAllForUser(ctx, userID, s.now()); err != nil {
		errutil.LogError(s.logger, "session revocation after password change failed", err)
	}

	s.logger.Info("password changed", "user_id", userID.String())
	return ChangeResult{Success: true}
}

// RequestPasswordReset issues a password-reset token for the account
// behind an email address. Returns the plaintext token for out-of-band
// delivery, or "" when no account matches; the caller shows the same
// response either way so the endpoint cannot confirm which emails exist.
// Issuing a new token retires any earlier unredeemed one.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	if _, err := s.tokens.InvalidateForUser(ctx, user.ID, PurposePasswordReset, s.now()); err != nil {
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "invalidate prior reset tokens").
			Wrap(err)
	}

	token, err := s.issueOneTimeToken(ctx, user.ID, PurposePasswordReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return "", oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "issue reset token").
			Wrap(err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID.String())
	return token, nil
}

// ResetPassword consumes a reset token and installs a new password. The
// token is consumed before the password is written, so a raced duplicate
// request cannot reset twice. A successful reset also clears any lockout
// and revokes all sessions.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword, confirmation string) ChangeResult {
	if err := ValidatePassword(newPassword, s.cfg); err != nil {
		return failChange(FailureValidation, err.Error())
	}
	if err := ValidatePasswordConfirmation(newPassword, confirmation); err != nil {
		return failChange(FailureValidation, err.Error())
	}

	record, err := s.tokens.GetByTokenHash(ctx, PurposePasswordReset, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failChange(FailureToken, msgInvalidToken)
		}
		errutil.LogError(s.logger, "reset token lookup failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	now := s.now()
	if !record.RedeemableAt(now) {
		return failChange(FailureToken, msgInvalidToken)
	}

	if err := s.tokens.MarkUsed(ctx, record.ID, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return failChange(FailureToken, msgInvalidToken)
		}
		errutil.LogError(s.logger, "reset token consume failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	hash, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		errutil.LogError(s.logger, "password hashing failed", err)
		return failChange(FailureSystem, msgSystemError)
	}
	if err := s.users.UpdatePassword(ctx, record.UserID, hash, salt); err != nil {
		errutil.LogError(s.logger, "password update failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	// A completed reset proves control of the email, so the lockout
	// state no longer protects anything.
	if err := s.users.ResetFailedLogins(ctx, record.UserID); err != nil {
		errutil.LogError(s.logger, "reset failed logins failed", err)
	}
	if err := s.users.SetAccountLocked(ctx, record.UserID, false); err != nil {
		errutil.LogError(s.logger, "clear account lock failed", err)
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, record.UserID, now); err != nil {
		errutil.LogError(s.logger, "session revocation after reset failed", err)
	}

	s.logger.Info("password reset", "user_id", record.UserID.String())
	return ChangeResult{Success: true}
}

// VerifyEmail consumes a verification token and marks the account's email
// verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) ChangeResult {
	record, err := s.tokens.GetByTokenHash(ctx, PurposeEmailVerification, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failChange(FailureToken, msgInvalidToken)
		}
		errutil.LogError(s.logger, "verification token lookup failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	now := s.now()
	if !record.RedeemableAt(now) {
		return failChange(FailureToken, msgInvalidToken)
	}

	if err := s.tokens.MarkUsed(ctx, record.ID, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return failChange(FailureToken, msgInvalidToken)
		}
		errutil.LogError(s.logger, "verification token consume failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	if err := s.users.MarkEmailVerified(ctx, record.UserID); err != nil {
		errutil.LogError(s.logger, "mark email verified failed", err)
		return failChange(FailureSystem, msgSystemError)
	}

	s.logger.Info("email verified", "user_id", record.UserID.String())
	return ChangeResult{Success: true}
}

// CleanupStats reports what a cleanup sweep removed.
type CleanupStats struct {
	Sessions      int64
	OneTimeTokens int64
}

// CleanupExpired removes dead session rows and expired one-time tokens.
// Sessions go once their refresh window has passed; revoked sessions are
// kept for the retention period first.
func (s *Service) CleanupExpired(ctx context.Context) (CleanupStats, error) {
	now := s.now()
	var stats CleanupStats

	deleted, err := s.sessions.DeleteExpired(ctx, now, now.Add(-s.cfg.RevokedRetention))
	if err != nil {
		return stats, oops.Code("AUTH_CLEANUP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	stats.Sessions = deleted
	CleanupDeleted.WithLabelValues("sessions").Add(float64(deleted))

	deleted, err = s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return stats, oops.Code("AUTH_CLEANUP_FAILED").
			With("operation", "delete expired tokens").
			Wrap(err)
	}
	stats.OneTimeTokens = deleted
	CleanupDeleted.WithLabelValues("tokens").Add(float64(deleted))

	s.logger.Info("cleanup sweep complete",
		"sessions_deleted", stats.Sessions,
		"tokens_deleted", stats.OneTimeTokens)
	return stats, nil
}

// PruneLoginHistory removes audit rows older than the cutoff.
func (s *Service) PruneLoginHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.attempts.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, oops.Code("AUTH_CLEANUP_FAILED").
			With("operation", "prune login history").
			Wrap(err)
	}
	CleanupDeleted.WithLabelValues("login_history").Add(float64(deleted))
	return deleted, nil
}

// LoginHistory lists a user's most recent login attempts, newest first.
func (s *Service) LoginHistory(ctx context.Context, userID ulid.ULID, limit int) ([]*LoginAttempt, error) {
	attempts, err := s.attempts.RecentForUser(ctx, userID, limit)
	if err != nil {
		return nil, oops.Code("AUTH_HISTORY_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return attempts, nil
}

// lookupByIdentifier resolves a login identifier to a user. Identifiers
// containing '@' are treated as email addresses.
func (s *Service) lookupByIdentifier(ctx context.Context, identifier string) (*User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByUsername(ctx, identifier)
}

// registerFailure bumps the failure counter and locks the account when the
// threshold is reached. Best effort: a failed write never changes the
// login response.
func (s *Service) registerFailure(ctx context.Context, user *User, now time.Time) {
	count, err := s.users.IncrementFailedLogins(ctx, user.ID, now)
	if err != nil {
		errutil.LogError(s.logger, "increment failed logins failed", err)
		return
	}
	if count >= s.cfg.MaxLoginAttempts && !user.AccountLocked {
		if err := s.users.SetAccountLocked(ctx, user.ID, true); err != nil {
			errutil.LogError(s.logger, "set account locked failed", err)
			return
		}
		AccountLockouts.Inc()
		s.logger.Warn("account locked after repeated failures",
			"user_id", user.ID.String(),
			"failed_attempts", count)
	}
}

// recordAttempt appends to the login audit trail. Best effort.
func (s *Service) recordAttempt(ctx context.Context, userID *ulid.ULID, identifier string, success bool, remoteAddr, userAgent, reason string, sessionID *ulid.ULID) {
	attempt := NewLoginAttempt(userID, identifier, success, remoteAddr, userAgent, reason, sessionID)
	if err := s.attempts.Record(ctx, attempt); err != nil {
		errutil.LogError(s.logger, "login attempt record failed", err)
	}
}

// issueOneTimeToken generates, persists, and returns a plaintext one-time
// token.
func (s *Service) issueOneTimeToken(ctx context.Context, userID ulid.ULID, purpose TokenPurpose, ttl time.Duration) (string, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return "", err
	}
	record, err := NewOneTimeToken(userID, purpose, hash, ttl)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", err
	}
	return token, nil
}
