// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

//go:build integration

package accounts_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/veyrm/accountd/internal/auth"
)

const (
	goodPassword = "Dungeon42crawl"
	remoteAddr   = "198.51.100.10"
	clientAgent  = "veyrm-client/1.4"
)

var _ = Describe("Account lifecycle", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupUsers(ctx, env.pool)
	})

	Describe("Registration", func() {
		It("registers and logs in with the same credentials", func() {
			reg := env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword)
			Expect(reg.Success).To(BeTrue(), reg.Message)
			Expect(reg.VerificationToken).NotTo(BeEmpty())

			login := env.Auth.Login(ctx, "shae", goodPassword, false, remoteAddr, clientAgent)
			Expect(login.Success).To(BeTrue(), login.Message)
			Expect(login.UserID).To(Equal(reg.UserID))
			Expect(login.SessionToken).NotTo(BeEmpty())
			Expect(login.RefreshToken).NotTo(BeEmpty())
		})

		It("logs in by email as well as username", func() {
			reg := env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword)
			Expect(reg.Success).To(BeTrue())

			login := env.Auth.Login(ctx, "shae@example.com", goodPassword, false, remoteAddr, clientAgent)
			Expect(login.Success).To(BeTrue(), login.Message)
		})

		It("rejects duplicate usernames and emails", func() {
			Expect(env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword).Success).To(BeTrue())

			dup := env.Auth.Register(ctx, "shae", "other@example.com", goodPassword, goodPassword)
			Expect(dup.Success).To(BeFalse())
			Expect(dup.Kind).To(Equal(auth.FailureDuplicate))
			Expect(dup.Message).To(ContainSubstring("Username"))

			// Email uniqueness is case-insensitive
			dup = env.Auth.Register(ctx, "other", "SHAE@example.com", goodPassword, goodPassword)
			Expect(dup.Success).To(BeFalse())
			Expect(dup.Kind).To(Equal(auth.FailureDuplicate))
			Expect(dup.Message).To(ContainSubstring("Email"))
		})

		It("reports validation failures in field order", func() {
			// Bad username and bad password together: the username error wins
			res := env.Auth.Register(ctx, "x", "shae@example.com", "short", "short")
			Expect(res.Kind).To(Equal(auth.FailureValidation))
			Expect(res.Message).To(ContainSubstring("Username"))

			// Valid username, bad email and bad password: the email error wins
			res = env.Auth.Register(ctx, "shae", "not-an-email", "short", "short")
			Expect(res.Kind).To(Equal(auth.FailureValidation))
			Expect(res.Message).To(ContainSubstring("email"))

			// Mismatched confirmation is reported last
			res = env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword+"x")
			Expect(res.Kind).To(Equal(auth.FailureValidation))
		})
	})

	Describe("Lockout", func() {
		It("locks the account at the failure threshold", func() {
			reg := env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword)
			Expect(reg.Success).To(BeTrue())

			for i := 0; i < auth.DefaultMaxLoginAttempts; i++ {
				res := env.Auth.Login(ctx, "shae", "Wrong42password", false, remoteAddr, clientAgent)
				Expect(res.Success).To(BeFalse())
			}

			// Even the correct password is refused while locked
			locked := env.Auth.Login(ctx, "shae", goodPassword, false, remoteAddr, clientAgent)
			Expect(locked.Success).To(BeFalse())
			Expect(locked.Message).To(ContainSubstring("locked"))
		})

		It("admits the correct password after the lockout expires", func() {
			reg := env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword)
			Expect(reg.Success).To(BeTrue())

			for i := 0; i < auth.DefaultMaxLoginAttempts; i++ {
				env.Auth.Login(ctx, "shae", "Wrong42password", false, remoteAddr, clientAgent)
			}

			// Suite config uses a 2s lockout
			Eventually(func() bool {
				return env.Auth.Login(ctx, "shae", goodPassword, false, remoteAddr, clientAgent).Success
			}, "5s", "250ms").Should(BeTrue())
		})

		It("does not reveal whether an account exists", func() {
			res := env.Auth.Login(ctx, "nosuchuser", goodPassword, false, remoteAddr, clientAgent)
			Expect(res.Success).To(BeFalse())
			Expect(res.Message).To(Equal("Invalid username or password"))
		})
	})

	Describe("Sessions", func() {
		It("validates a fresh session token", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			v := env.Auth.ValidateSession(ctx, login.SessionToken)
			Expect(v.Valid).To(BeTrue(), v.Message)
			Expect(v.UserID).To(Equal(login.UserID))
		})

		It("reports true only for the logout that revoked", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			first, err := env.Auth.Logout(ctx, login.SessionToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(BeTrue())

			// The second logout of the same token is a harmless no-op,
			// but the caller can tell it did nothing
			second, err := env.Auth.Logout(ctx, login.SessionToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(BeFalse())

			v := env.Auth.ValidateSession(ctx, login.SessionToken)
			Expect(v.Valid).To(BeFalse())
		})

		It("rotates the refresh token exactly once", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			refreshed := env.Auth.RefreshSession(ctx, login.RefreshToken, remoteAddr, clientAgent)
			Expect(refreshed.Success).To(BeTrue(), refreshed.Message)
			Expect(refreshed.SessionToken).NotTo(Equal(login.SessionToken))
			Expect(refreshed.RefreshToken).NotTo(Equal(login.RefreshToken))

			// The consumed refresh token cannot be replayed
			replay := env.Auth.RefreshSession(ctx, login.RefreshToken, remoteAddr, clientAgent)
			Expect(replay.Success).To(BeFalse())
			Expect(replay.Kind).To(Equal(auth.FailureToken))

			// The rotated pair works
			v := env.Auth.ValidateSession(ctx, refreshed.SessionToken)
			Expect(v.Valid).To(BeTrue())
		})

		It("stores the client address and agent on the session row", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			sessions, err := env.Auth.ActiveSessions(ctx, login.UserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].IPAddress).To(Equal(remoteAddr))
			Expect(sessions[0].UserAgent).To(Equal(clientAgent))
		})

		It("revokes every session with LogoutAllSessions", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)
			second := env.Auth.Login(ctx, "shae", goodPassword, false, remoteAddr, clientAgent)
			Expect(second.Success).To(BeTrue())

			count, err := env.Auth.LogoutAllSessions(ctx, login.UserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeEquivalentTo(2))

			Expect(env.Auth.ValidateSession(ctx, login.SessionToken).Valid).To(BeFalse())
			Expect(env.Auth.ValidateSession(ctx, second.SessionToken).Valid).To(BeFalse())
		})
	})

	Describe("Password reset", func() {
		It("resets the password and revokes existing sessions", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			token, err := env.Auth.RequestPasswordReset(ctx, "shae@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			newPassword := "Fresh42start"
			res := env.Auth.ResetPassword(ctx, token, newPassword, newPassword)
			Expect(res.Success).To(BeTrue(), res.Message)

			// Old sessions are dead
			Expect(env.Auth.ValidateSession(ctx, login.SessionToken).Valid).To(BeFalse())

			// Old password no longer works, new one does
			Expect(env.Auth.Login(ctx, "shae", goodPassword, false, remoteAddr, clientAgent).Success).To(BeFalse())
			Expect(env.Auth.Login(ctx, "shae", newPassword, false, remoteAddr, clientAgent).Success).To(BeTrue())
		})

		It("consumes the reset token exactly once", func() {
			registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			token, err := env.Auth.RequestPasswordReset(ctx, "shae@example.com")
			Expect(err).NotTo(HaveOccurred())

			newPassword := "Fresh42start"
			Expect(env.Auth.ResetPassword(ctx, token, newPassword, newPassword).Success).To(BeTrue())

			replay := env.Auth.ResetPassword(ctx, token, "Another42one", "Another42one")
			Expect(replay.Success).To(BeFalse())
			Expect(replay.Kind).To(Equal(auth.FailureToken))
		})

		It("does not disclose unknown emails", func() {
			token, err := env.Auth.RequestPasswordReset(ctx, "ghost@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("Email verification", func() {
		It("marks the email verified exactly once", func() {
			reg := env.Auth.Register(ctx, "shae", "shae@example.com", goodPassword, goodPassword)
			Expect(reg.Success).To(BeTrue())

			res := env.Auth.VerifyEmail(ctx, reg.VerificationToken)
			Expect(res.Success).To(BeTrue(), res.Message)

			replay := env.Auth.VerifyEmail(ctx, reg.VerificationToken)
			Expect(replay.Success).To(BeFalse())
			Expect(replay.Kind).To(Equal(auth.FailureToken))
		})
	})

	Describe("Login history", func() {
		It("records successes and failures and prunes old rows", func() {
			login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)
			env.Auth.Login(ctx, "shae", "Wrong42password", false, remoteAddr, clientAgent)

			history, err := env.Auth.LoginHistory(ctx, login.UserID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(history)).To(BeNumerically(">=", 2))
			// Newest first: the failed attempt leads, with its reason
			Expect(history[0].Success).To(BeFalse())
			Expect(history[0].FailureReason).To(Equal(auth.ReasonBadCredentials))
			Expect(history[0].UserAgent).To(Equal(clientAgent))
			Expect(history[0].SessionID).To(BeNil())

			// The successful attempt is linked to the session it produced
			Expect(history[1].Success).To(BeTrue())
			Expect(history[1].SessionID).NotTo(BeNil())

			pruned, err := env.Auth.PruneLoginHistory(ctx, time.Now().Add(time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(pruned).To(BeNumerically(">=", 2))
		})
	})

	Describe("Cleanup sweep", func() {
		It("runs without error on a live schema", func() {
			registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)

			stats, err := env.Auth.CleanupExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			// Fresh sessions and tokens survive
			Expect(stats.Sessions).To(BeZero())
			Expect(stats.OneTimeTokens).To(BeZero())
		})
	})
})
