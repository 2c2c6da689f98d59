// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package savegame

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Backup reasons recorded on snapshot rows.
const (
	ReasonPreUpdate          = "pre_update"
	ReasonPreDelete          = "pre_delete"
	ReasonConflictResolution = "conflict_resolution"
)

// SaveBackup is a point-in-time snapshot of a save payload, taken
// before any destructive write.
type SaveBackup struct {
	ID        ulid.ULID
	SaveID    ulid.ULID
	Data      json.RawMessage
	Reason    string
	CreatedAt time.Time
}

// BackupRepository manages backup persistence.
type BackupRepository interface {
	// Create snapshots the given payload for a save.
	Create(ctx context.Context, saveID ulid.ULID, data json.RawMessage, reason string) error

	// ListBySave returns up to limit backups for a save, newest first.
	ListBySave(ctx context.Context, saveID ulid.ULID, limit int) ([]*SaveBackup, error)

	// Prune deletes all but the keep most recent backups for a save and
	// returns how many rows went.
	Prune(ctx context.Context, saveID ulid.ULID, keep int) (int64, error)

	// PruneAll applies the per-save cap across every save and returns
	// how many rows went. Used by the maintenance sweep.
	PruneAll(ctx context.Context, keep int) (int64, error)
}
