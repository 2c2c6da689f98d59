// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for auth metrics.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeDuplicate  = "duplicate"
	OutcomeAuth       = "auth"
	OutcomeLocked     = "locked"
	OutcomeToken      = "token"
	OutcomeSystem     = "system"
)

// LoginAttempts is the counter for login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_login_attempts_total",
		Help: "Total number of login attempts",
	},
	[]string{"outcome"},
)

// Registrations is the counter for registration attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_registrations_total",
		Help: "Total number of registration attempts",
	},
	[]string{"outcome"},
)

// SessionValidations is the counter for session token validations.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionValidations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_session_validations_total",
		Help: "Total number of session token validations",
	},
	[]string{"outcome"},
)

// SessionRefreshes is the counter for refresh-token rotations.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionRefreshes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_session_refreshes_total",
		Help: "Total number of session refresh attempts",
	},
	[]string{"outcome"},
)

// AccountLockouts is the counter for accounts locked by the failure
// threshold. Use RegisterMetrics to register this with a Prometheus
// registry.
var AccountLockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "accountd_account_lockouts_total",
		Help: "Total number of accounts locked after repeated login failures",
	},
)

// CleanupDeleted is the counter for rows removed by the cleanup sweep.
// Use RegisterMetrics to register this with a Prometheus registry.
var CleanupDeleted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_cleanup_deleted_total",
		Help: "Total number of rows removed by the cleanup sweep",
	},
	[]string{"kind"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// This must be called at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Registrations)
	reg.MustRegister(SessionValidations)
	reg.MustRegister(SessionRefreshes)
	reg.MustRegister(AccountLockouts)
	reg.MustRegister(CleanupDeleted)
}
