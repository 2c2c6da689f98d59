// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/internal/savegame"
)

// BackupRepository implements savegame.BackupRepository using PostgreSQL.
type BackupRepository struct {
	pool poolIface
}

var _ savegame.BackupRepository = (*BackupRepository)(nil)

// NewBackupRepository creates a new BackupRepository.
func NewBackupRepository(pool poolIface) *BackupRepository {
	return &BackupRepository{pool: pool}
}

// Create snapshots the given payload for a save.
func (r *BackupRepository) Create(ctx context.Context, saveID ulid.ULID, data json.RawMessage, reason string) error {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO save_backups (id, save_id, data, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		ulid.Make().String(),
		saveID.String(),
		[]byte(data),
		reason,
		time.Now(),
	)
	if err != nil {
		return oops.Code("BACKUP_CREATE_FAILED").
			With("operation", "insert backup").
			With("save_id", saveID.String()).
			Wrap(err)
	}
	return nil
}

// ListBySave returns up to limit backups for a save, newest first.
func (r *BackupRepository) ListBySave(ctx context.Context, saveID ulid.ULID, limit int) ([]*savegame.SaveBackup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, save_id, data, reason, created_at
		FROM save_backups
		WHERE save_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, saveID.String(), limit)
	if err != nil {
		return nil, oops.Code("BACKUP_LIST_FAILED").
			With("operation", "list backups").
			With("save_id", saveID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var backups []*savegame.SaveBackup
	for rows.Next() {
		backup, err := scanBackup(rows)
		if err != nil {
			return nil, oops.Code("BACKUP_LIST_FAILED").
				With("operation", "scan backup row").
				Wrap(err)
		}
		backups = append(backups, backup)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BACKUP_LIST_FAILED").
			With("operation", "iterate backup rows").
			Wrap(err)
	}
	return backups, nil
}

// Prune deletes all but the keep most recent backups for a save.
func (r *BackupRepository) Prune(ctx context.Context, saveID ulid.ULID, keep int) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM save_backups
		WHERE save_id = $1 AND id NOT IN (
			SELECT id FROM save_backups
			WHERE save_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`, saveID.String(), keep)
	if err != nil {
		return 0, oops.Code("BACKUP_PRUNE_FAILED").
			With("operation", "prune backups").
			With("save_id", saveID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// PruneAll applies the per-save cap across every save.
func (r *BackupRepository) PruneAll(ctx context.Context, keep int) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM save_backups
		WHERE id IN (
			SELECT id FROM (
				SELECT id, row_number() OVER (
					PARTITION BY save_id ORDER BY created_at DESC
				) AS rank
				FROM save_backups
			) ranked
			WHERE ranked.rank > $1
		)
	`, keep)
	if err != nil {
		return 0, oops.Code("BACKUP_PRUNE_FAILED").
			With("operation", "prune backups for all saves").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanBackup scans a single row into a SaveBackup.
// Callers are responsible for handling pgx.ErrNoRows.
func scanBackup(row pgx.Row) (*savegame.SaveBackup, error) {
	var (
		idStr     string
		saveIDStr string
		data      []byte
		backup    savegame.SaveBackup
	)

	err := row.Scan(
		&idStr,
		&saveIDStr,
		&data,
		&backup.Reason,
		&backup.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("BACKUP_SCAN_FAILED").
			With("operation", "parse backup id").
			With("id", idStr).
			Wrap(err)
	}
	backup.ID = id

	saveID, err := ulid.Parse(saveIDStr)
	if err != nil {
		return nil, oops.Code("BACKUP_SCAN_FAILED").
			With("operation", "parse save id").
			With("save_id", saveIDStr).
			Wrap(err)
	}
	backup.SaveID = saveID
	backup.Data = data

	return &backup, nil
}
