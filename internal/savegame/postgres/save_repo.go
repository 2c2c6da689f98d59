// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/internal/savegame"
)

// SaveRepository implements savegame.SaveRepository using PostgreSQL.
type SaveRepository struct {
	pool poolIface
}

var _ savegame.SaveRepository = (*SaveRepository)(nil)

// NewSaveRepository creates a new SaveRepository.
func NewSaveRepository(pool poolIface) *SaveRepository {
	return &SaveRepository{pool: pool}
}

// Create stores a new save row.
func (r *SaveRepository) Create(ctx context.Context, save *savegame.SaveGame) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO save_games (
			id, user_id, slot, character_name, character_level, map_depth,
			play_time, turn_count, data, checksum, save_version,
			game_version, device_id, device_name, sync_status,
			created_at, updated_at, last_played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		save.ID.String(),
		save.UserID.String(),
		save.Slot,
		save.CharacterName,
		save.CharacterLevel,
		save.MapDepth,
		save.PlayTime,
		save.TurnCount,
		[]byte(save.Data),
		save.Checksum,
		save.SaveVersion,
		save.GameVersion,
		save.DeviceID,
		save.DeviceName,
		string(save.SyncStatus),
		save.CreatedAt,
		save.UpdatedAt,
		save.LastPlayedAt,
	)
	if err != nil {
		return oops.Code("SAVE_CREATE_FAILED").
			With("operation", "insert save").
			With("slot", save.Slot).
			Wrap(err)
	}
	return nil
}

// Update overwrites a save row in place.
func (r *SaveRepository) Update(ctx context.Context, save *savegame.SaveGame) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE save_games SET
			character_name = $2,
			character_level = $3,
			map_depth = $4,
			play_time = $5,
			turn_count = $6,
			data = $7,
			checksum = $8,
			save_version = $9,
			game_version = $10,
			device_id = $11,
			device_name = $12,
			sync_status = $13,
			updated_at = $14,
			last_played_at = $15
		WHERE id = $1
	`,
		save.ID.String(),
		save.CharacterName,
		save.CharacterLevel,
		save.MapDepth,
		save.PlayTime,
		save.TurnCount,
		[]byte(save.Data),
		save.Checksum,
		save.SaveVersion,
		save.GameVersion,
		save.DeviceID,
		save.DeviceName,
		string(save.SyncStatus),
		save.UpdatedAt,
		save.LastPlayedAt,
	)
	if err != nil {
		return oops.Code("SAVE_UPDATE_FAILED").
			With("operation", "update save").
			With("id", save.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SAVE_NOT_FOUND").
			With("id", save.ID.String()).
			Wrap(savegame.ErrNotFound)
	}
	return nil
}

// Delete removes a save by ID. Conflict and backup rows cascade.
func (r *SaveRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM save_games WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("SAVE_DELETE_FAILED").
			With("operation", "delete save").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SAVE_NOT_FOUND").
			With("id", id.String()).
			Wrap(savegame.ErrNotFound)
	}
	return nil
}

// FindByID retrieves a save by ID.
func (r *SaveRepository) FindByID(ctx context.Context, id ulid.ULID) (*savegame.SaveGame, error) {
	row := r.pool.QueryRow(ctx, selectSave+`WHERE id = $1`, id.String())

	save, err := scanSave(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SAVE_NOT_FOUND").
			With("id", id.String()).
			Wrap(savegame.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SAVE_GET_FAILED").
			With("operation", "get save by id").
			With("id", id.String()).
			Wrap(err)
	}
	return save, nil
}

// FindByUserAndSlot retrieves the save occupying a user's slot.
func (r *SaveRepository) FindByUserAndSlot(ctx context.Context, userID ulid.ULID, slot int) (*savegame.SaveGame, error) {
	row := r.pool.QueryRow(ctx, selectSave+`WHERE user_id = $1 AND slot = $2`, userID.String(), slot)

	save, err := scanSave(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SAVE_NOT_FOUND").
			With("slot", slot).
			Wrap(savegame.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SAVE_GET_FAILED").
			With("operation", "get save by user and slot").
			With("slot", slot).
			Wrap(err)
	}
	return save, nil
}

// ListByUser returns all of a user's saves ordered by slot.
func (r *SaveRepository) ListByUser(ctx context.Context, userID ulid.ULID) ([]*savegame.SaveGame, error) {
	rows, err := r.pool.Query(ctx, selectSave+`
		WHERE user_id = $1
		ORDER BY slot
	`, userID.String())
	if err != nil {
		return nil, oops.Code("SAVE_LIST_FAILED").
			With("operation", "list saves by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var saves []*savegame.SaveGame
	for rows.Next() {
		save, err := scanSave(rows)
		if err != nil {
			return nil, oops.Code("SAVE_LIST_FAILED").
				With("operation", "scan save row").
				Wrap(err)
		}
		saves = append(saves, save)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SAVE_LIST_FAILED").
			With("operation", "iterate save rows").
			Wrap(err)
	}
	return saves, nil
}

// SetSyncStatus updates the sync flag on a save.
func (r *SaveRepository) SetSyncStatus(ctx context.Context, id ulid.ULID, status savegame.SyncStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE save_games SET sync_status = $2 WHERE id = $1
	`, id.String(), string(status))
	if err != nil {
		return oops.Code("SAVE_SET_SYNC_FAILED").
			With("operation", "set sync status").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SAVE_NOT_FOUND").
			With("id", id.String()).
			Wrap(savegame.ErrNotFound)
	}
	return nil
}

const selectSave = `
	SELECT id, user_id, slot, character_name, character_level, map_depth,
	       play_time, turn_count, data, checksum, save_version,
	       game_version, device_id, device_name, sync_status,
	       created_at, updated_at, last_played_at
	FROM save_games
	`

// scanSave scans a single row into a SaveGame.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSave(row pgx.Row) (*savegame.SaveGame, error) {
	var (
		idStr      string
		userIDStr  string
		data       []byte
		syncStatus string
		save       savegame.SaveGame
	)

	err := row.Scan(
		&idStr,
		&userIDStr,
		&save.Slot,
		&save.CharacterName,
		&save.CharacterLevel,
		&save.MapDepth,
		&save.PlayTime,
		&save.TurnCount,
		&data,
		&save.Checksum,
		&save.SaveVersion,
		&save.GameVersion,
		&save.DeviceID,
		&save.DeviceName,
		&syncStatus,
		&save.CreatedAt,
		&save.UpdatedAt,
		&save.LastPlayedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SAVE_SCAN_FAILED").
			With("operation", "parse save id").
			With("id", idStr).
			Wrap(err)
	}
	save.ID = id

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SAVE_SCAN_FAILED").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}
	save.UserID = userID
	save.Data = data
	save.SyncStatus = savegame.SyncStatus(syncStatus)

	return &save, nil
}
