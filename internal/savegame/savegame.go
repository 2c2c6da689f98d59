// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package savegame

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a save, conflict, or backup does not exist.
var ErrNotFound = errors.New("not found")

// Slot bounds. Positive slots are manual saves; negative slots form the
// autosave ring.
const (
	MinManualSlot = 1
	MaxManualSlot = 9
	MinAutoSlot   = -3
	MaxAutoSlot   = -1
)

// SyncStatus tracks whether a save row agrees with the client's copy.
type SyncStatus string

const (
	StatusSynced   SyncStatus = "synced"
	StatusPending  SyncStatus = "pending"
	StatusConflict SyncStatus = "conflict"
)

// SaveGame is one cloud save slot.
type SaveGame struct {
	ID             ulid.ULID
	UserID         ulid.ULID
	Slot           int
	CharacterName  string
	CharacterLevel int
	MapDepth       int
	PlayTime       int // seconds
	TurnCount      int
	Data           json.RawMessage
	Checksum       string
	SaveVersion    string
	GameVersion    string
	DeviceID       string
	DeviceName     string
	SyncStatus     SyncStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastPlayedAt   time.Time
}

// IsAutoSave reports whether the save lives in the autosave ring.
func (s *SaveGame) IsAutoSave() bool { return s.Slot < 0 }

// IsManualSave reports whether the save occupies a manual slot.
func (s *SaveGame) IsManualSave() bool { return s.Slot > 0 }

// HasConflict reports whether the save has unresolved divergence.
func (s *SaveGame) HasConflict() bool { return s.SyncStatus == StatusConflict }

// ValidSlot reports whether slot is within the manual range or the
// autosave ring. Slot 0 is never valid.
func ValidSlot(slot int) bool {
	if slot >= MinManualSlot && slot <= MaxManualSlot {
		return true
	}
	return slot >= MinAutoSlot && slot <= MaxAutoSlot
}

// DataChecksum returns the lowercase hex SHA-256 of the save payload.
// Uploads carry the checksum of the cloud copy they were based on; a
// mismatch against the stored row means the slot diverged.
func DataChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewSaveGame creates a validated save for a user-owned slot.
func NewSaveGame(userID ulid.ULID, slot int, data json.RawMessage) (*SaveGame, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SAVE_INVALID_USER").Errorf("user id cannot be zero")
	}
	if !ValidSlot(slot) {
		return nil, oops.Code("SAVE_INVALID_SLOT").
			With("slot", slot).
			Errorf("slot must be %d..%d or %d..%d", MinManualSlot, MaxManualSlot, MinAutoSlot, MaxAutoSlot)
	}
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	now := time.Now()
	return &SaveGame{
		ID:             ulid.Make(),
		UserID:         userID,
		Slot:           slot,
		CharacterLevel: 1,
		MapDepth:       1,
		Data:           data,
		Checksum:       DataChecksum(data),
		SyncStatus:     StatusSynced,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastPlayedAt:   now,
	}, nil
}

// SaveRepository manages save-slot persistence.
type SaveRepository interface {
	// Create stores a new save row.
	Create(ctx context.Context, save *SaveGame) error

	// Update overwrites a save row in place.
	Update(ctx context.Context, save *SaveGame) error

	// Delete removes a save by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// FindByID retrieves a save by ID. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id ulid.ULID) (*SaveGame, error)

	// FindByUserAndSlot retrieves the save occupying a user's slot.
	// Returns ErrNotFound when the slot is empty.
	FindByUserAndSlot(ctx context.Context, userID ulid.ULID, slot int) (*SaveGame, error)

	// ListByUser returns all of a user's saves ordered by slot.
	ListByUser(ctx context.Context, userID ulid.ULID) ([]*SaveGame, error)

	// SetSyncStatus updates the sync flag on a save.
	SetSyncStatus(ctx context.Context, id ulid.ULID, status SyncStatus) error
}
