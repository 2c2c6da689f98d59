// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package savegame

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values for upload metrics.
const (
	ResultCreated    = "created"
	ResultUpdated    = "updated"
	ResultConflicted = "conflicted"
	ResultError      = "error"
)

// Uploads is the counter for save uploads by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Uploads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accountd_save_uploads_total",
		Help: "Total number of save uploads",
	},
	[]string{"result"},
)

// ConflictsDetected is the counter for diverged uploads.
// Use RegisterMetrics to register this with a Prometheus registry.
var ConflictsDetected = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "accountd_save_conflicts_total",
		Help: "Total number of save conflicts detected",
	},
)

// BackupsPruned is the counter for backup rows removed by pruning.
// Use RegisterMetrics to register this with a Prometheus registry.
var BackupsPruned = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "accountd_save_backups_pruned_total",
		Help: "Total number of save backups pruned",
	},
)

// RegisterMetrics registers savegame package metrics with the given
// Prometheus registry. Panics if registration fails (following
// prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Uploads)
	reg.MustRegister(ConflictsDetected)
	reg.MustRegister(BackupsPruned)
}
