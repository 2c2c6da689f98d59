// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package savegame

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Resolution names how a conflict was settled.
type Resolution string

const (
	// ResolutionLocalWins installs the rejected upload over the cloud copy.
	ResolutionLocalWins Resolution = "local_wins"
	// ResolutionCloudWins keeps the stored save and discards the upload.
	ResolutionCloudWins Resolution = "cloud_wins"
	// ResolutionBackupBoth keeps the cloud copy and snapshots the upload
	// as a backup.
	ResolutionBackupBoth Resolution = "backup_both"
)

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionLocalWins, ResolutionCloudWins, ResolutionBackupBoth:
		return true
	}
	return false
}

// SaveConflict preserves an upload that diverged from the stored save.
type SaveConflict struct {
	ID         ulid.ULID
	SaveID     ulid.ULID
	Data       json.RawMessage
	DeviceID   string
	DeviceName string
	CreatedAt  time.Time
	Resolved   bool
	Resolution Resolution
}

// NewSaveConflict records a diverged upload against a save.
func NewSaveConflict(saveID ulid.ULID, data json.RawMessage, deviceID, deviceName string) (*SaveConflict, error) {
	if saveID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("CONFLICT_INVALID_SAVE").Errorf("save id cannot be zero")
	}
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	return &SaveConflict{
		ID:         ulid.Make(),
		SaveID:     saveID,
		Data:       data,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		CreatedAt:  time.Now(),
	}, nil
}

// ConflictRepository manages conflict persistence.
type ConflictRepository interface {
	// Create stores a new conflict row.
	Create(ctx context.Context, conflict *SaveConflict) error

	// FindByID retrieves a conflict by ID. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id ulid.ULID) (*SaveConflict, error)

	// UnresolvedForUser lists open conflicts across all of a user's
	// saves, newest first.
	UnresolvedForUser(ctx context.Context, userID ulid.ULID) ([]*SaveConflict, error)

	// Resolve marks a conflict settled. Returns ErrNotFound when the
	// conflict is absent or already resolved.
	Resolve(ctx context.Context, id ulid.ULID, resolution Resolution) error
}
