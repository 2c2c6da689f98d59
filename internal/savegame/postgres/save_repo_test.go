// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyrm/accountd/internal/savegame"
)

func sampleSave() *savegame.SaveGame {
	data := json.RawMessage(`{"depth":3}`)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &savegame.SaveGame{
		ID:             ulid.Make(),
		UserID:         ulid.Make(),
		Slot:           2,
		CharacterName:  "Shae",
		CharacterLevel: 7,
		MapDepth:       3,
		PlayTime:       5400,
		TurnCount:      12345,
		Data:           data,
		Checksum:       savegame.DataChecksum(data),
		SaveVersion:    "1.0",
		GameVersion:    "0.9.2",
		DeviceID:       "dev-1",
		DeviceName:     "laptop",
		SyncStatus:     savegame.StatusSynced,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastPlayedAt:   now,
	}
}

func saveRows(save *savegame.SaveGame) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "slot", "character_name", "character_level",
		"map_depth", "play_time", "turn_count", "data", "checksum",
		"save_version", "game_version", "device_id", "device_name",
		"sync_status", "created_at", "updated_at", "last_played_at",
	}).AddRow(
		save.ID.String(), save.UserID.String(), save.Slot,
		save.CharacterName, save.CharacterLevel, save.MapDepth,
		save.PlayTime, save.TurnCount, []byte(save.Data), save.Checksum,
		save.SaveVersion, save.GameVersion, save.DeviceID, save.DeviceName,
		string(save.SyncStatus), save.CreatedAt, save.UpdatedAt, save.LastPlayedAt,
	)
}

func TestSaveRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, save *savegame.SaveGame)
		wantErr   bool
		errMsg    string
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface, save *savegame.SaveGame) {
				mock.ExpectExec(`INSERT INTO save_games`).
					WithArgs(
						save.ID.String(), save.UserID.String(), save.Slot,
						save.CharacterName, save.CharacterLevel, save.MapDepth,
						save.PlayTime, save.TurnCount, []byte(save.Data),
						save.Checksum, save.SaveVersion, save.GameVersion,
						save.DeviceID, save.DeviceName, string(save.SyncStatus),
						save.CreatedAt, save.UpdatedAt, save.LastPlayedAt,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantErr: false,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface, save *savegame.SaveGame) {
				mock.ExpectExec(`INSERT INTO save_games`).
					WithArgs(
						save.ID.String(), save.UserID.String(), save.Slot,
						save.CharacterName, save.CharacterLevel, save.MapDepth,
						save.PlayTime, save.TurnCount, []byte(save.Data),
						save.Checksum, save.SaveVersion, save.GameVersion,
						save.DeviceID, save.DeviceName, string(save.SyncStatus),
						save.CreatedAt, save.UpdatedAt, save.LastPlayedAt,
					).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
			errMsg:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			save := sampleSave()
			tt.setupMock(mock, save)

			repo := NewSaveRepository(mock)
			err = repo.Create(context.Background(), save)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestSaveRepository_FindByUserAndSlot(t *testing.T) {
	t.Run("returns the save", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		save := sampleSave()
		mock.ExpectQuery(`SELECT .+ FROM save_games\s+WHERE user_id = \$1 AND slot = \$2`).
			WithArgs(save.UserID.String(), save.Slot).
			WillReturnRows(saveRows(save))

		repo := NewSaveRepository(mock)
		got, err := repo.FindByUserAndSlot(context.Background(), save.UserID, save.Slot)
		require.NoError(t, err)
		assert.Equal(t, save.ID, got.ID)
		assert.Equal(t, save.Checksum, got.Checksum)
		assert.Equal(t, savegame.StatusSynced, got.SyncStatus)
		assert.JSONEq(t, string(save.Data), string(got.Data))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty slot reports ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		userID := ulid.Make()
		mock.ExpectQuery(`SELECT .+ FROM save_games\s+WHERE user_id = \$1 AND slot = \$2`).
			WithArgs(userID.String(), 4).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		repo := NewSaveRepository(mock)
		got, err := repo.FindByUserAndSlot(context.Background(), userID, 4)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, savegame.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveRepository_Update(t *testing.T) {
	t.Run("updates the row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		save := sampleSave()
		mock.ExpectExec(`UPDATE save_games SET`).
			WithArgs(
				save.ID.String(), save.CharacterName, save.CharacterLevel,
				save.MapDepth, save.PlayTime, save.TurnCount, []byte(save.Data),
				save.Checksum, save.SaveVersion, save.GameVersion,
				save.DeviceID, save.DeviceName, string(save.SyncStatus),
				save.UpdatedAt, save.LastPlayedAt,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSaveRepository(mock)
		require.NoError(t, repo.Update(context.Background(), save))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row reports ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		save := sampleSave()
		mock.ExpectExec(`UPDATE save_games SET`).
			WithArgs(
				save.ID.String(), save.CharacterName, save.CharacterLevel,
				save.MapDepth, save.PlayTime, save.TurnCount, []byte(save.Data),
				save.Checksum, save.SaveVersion, save.GameVersion,
				save.DeviceID, save.DeviceName, string(save.SyncStatus),
				save.UpdatedAt, save.LastPlayedAt,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSaveRepository(mock)
		err = repo.Update(context.Background(), save)
		assert.ErrorIs(t, err, savegame.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveRepository_Delete(t *testing.T) {
	t.Run("deletes the row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM save_games WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewSaveRepository(mock)
		require.NoError(t, repo.Delete(context.Background(), id))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row reports ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM save_games WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSaveRepository(mock)
		err = repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, savegame.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveRepository_ListByUser(t *testing.T) {
	t.Run("returns saves ordered by slot", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		first := sampleSave()
		first.Slot = -1
		second := sampleSave()
		second.UserID = first.UserID
		second.Slot = 3

		rows := saveRows(first).AddRow(
			second.ID.String(), second.UserID.String(), second.Slot,
			second.CharacterName, second.CharacterLevel, second.MapDepth,
			second.PlayTime, second.TurnCount, []byte(second.Data), second.Checksum,
			second.SaveVersion, second.GameVersion, second.DeviceID, second.DeviceName,
			string(second.SyncStatus), second.CreatedAt, second.UpdatedAt, second.LastPlayedAt,
		)

		mock.ExpectQuery(`SELECT .+ FROM save_games\s+WHERE user_id = \$1\s+ORDER BY slot`).
			WithArgs(first.UserID.String()).
			WillReturnRows(rows)

		repo := NewSaveRepository(mock)
		saves, err := repo.ListByUser(context.Background(), first.UserID)
		require.NoError(t, err)
		require.Len(t, saves, 2)
		assert.Equal(t, -1, saves[0].Slot)
		assert.Equal(t, 3, saves[1].Slot)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty for user with no saves", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		userID := ulid.Make()
		mock.ExpectQuery(`SELECT .+ FROM save_games\s+WHERE user_id = \$1\s+ORDER BY slot`).
			WithArgs(userID.String()).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "slot", "character_name", "character_level",
				"map_depth", "play_time", "turn_count", "data", "checksum",
				"save_version", "game_version", "device_id", "device_name",
				"sync_status", "created_at", "updated_at", "last_played_at",
			}))

		repo := NewSaveRepository(mock)
		saves, err := repo.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, saves)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveRepository_SetSyncStatus(t *testing.T) {
	t.Run("flips the flag", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE save_games SET sync_status = \$2 WHERE id = \$1`).
			WithArgs(id.String(), "conflict").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSaveRepository(mock)
		require.NoError(t, repo.SetSyncStatus(context.Background(), id, savegame.StatusConflict))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
