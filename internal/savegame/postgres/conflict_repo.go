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

// ConflictRepository implements savegame.ConflictRepository using
// PostgreSQL.
type ConflictRepository struct {
	pool poolIface
}

var _ savegame.ConflictRepository = (*ConflictRepository)(nil)

// NewConflictRepository creates a new ConflictRepository.
func NewConflictRepository(pool poolIface) *ConflictRepository {
	return &ConflictRepository{pool: pool}
}

// Create stores a new conflict row.
func (r *ConflictRepository) Create(ctx context.Context, conflict *savegame.SaveConflict) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO save_conflicts (
			id, save_id, data, device_id, device_name, created_at,
			resolved, resolution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		conflict.ID.String(),
		conflict.SaveID.String(),
		[]byte(conflict.Data),
		conflict.DeviceID,
		conflict.DeviceName,
		conflict.CreatedAt,
		conflict.Resolved,
		string(conflict.Resolution),
	)
	if err != nil {
		return oops.Code("CONFLICT_CREATE_FAILED").
			With("operation", "insert conflict").
			With("save_id", conflict.SaveID.String()).
			Wrap(err)
	}
	return nil
}

// FindByID retrieves a conflict by ID.
func (r *ConflictRepository) FindByID(ctx context.Context, id ulid.ULID) (*savegame.SaveConflict, error) {
	row := r.pool.QueryRow(ctx, selectConflict+`WHERE id = $1`, id.String())

	conflict, err := scanConflict(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CONFLICT_NOT_FOUND").
			With("id", id.String()).
			Wrap(savegame.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CONFLICT_GET_FAILED").
			With("operation", "get conflict by id").
			With("id", id.String()).
			Wrap(err)
	}
	return conflict, nil
}

// UnresolvedForUser lists open conflicts across all of a user's saves,
// newest first.
func (r *ConflictRepository) UnresolvedForUser(ctx context.Context, userID ulid.ULID) ([]*savegame.SaveConflict, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.save_id, c.data, c.device_id, c.device_name,
		       c.created_at, c.resolved, c.resolution
		FROM save_conflicts c
		JOIN save_games s ON s.id = c.save_id
		WHERE s.user_id = $1 AND NOT c.resolved
		ORDER BY c.created_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("CONFLICT_LIST_FAILED").
			With("operation", "list unresolved conflicts").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var conflicts []*savegame.SaveConflict
	for rows.Next() {
		conflict, err := scanConflict(rows)
		if err != nil {
			return nil, oops.Code("CONFLICT_LIST_FAILED").
				With("operation", "scan conflict row").
				Wrap(err)
		}
		conflicts = append(conflicts, conflict)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CONFLICT_LIST_FAILED").
			With("operation", "iterate conflict rows").
			Wrap(err)
	}
	return conflicts, nil
}

// Resolve marks a conflict settled. The resolved guard keeps a second
// resolution from overwriting the first.
func (r *ConflictRepository) Resolve(ctx context.Context, id ulid.ULID, resolution savegame.Resolution) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE save_conflicts SET resolved = TRUE, resolution = $2
		WHERE id = $1 AND NOT resolved
	`, id.String(), string(resolution))
	if err != nil {
		return oops.Code("CONFLICT_RESOLVE_FAILED").
			With("operation", "resolve conflict").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CONFLICT_NOT_FOUND").
			With("id", id.String()).
			Wrap(savegame.ErrNotFound)
	}
	return nil
}

const selectConflict = `
	SELECT id, save_id, data, device_id, device_name, created_at,
	       resolved, resolution
	FROM save_conflicts
	`

// scanConflict scans a single row into a SaveConflict.
// Callers are responsible for handling pgx.ErrNoRows.
func scanConflict(row pgx.Row) (*savegame.SaveConflict, error) {
	var (
		idStr      string
		saveIDStr  string
		data       []byte
		resolution string
		conflict   savegame.SaveConflict
	)

	err := row.Scan(
		&idStr,
		&saveIDStr,
		&data,
		&conflict.DeviceID,
		&conflict.DeviceName,
		&conflict.CreatedAt,
		&conflict.Resolved,
		&resolution,
	)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CONFLICT_SCAN_FAILED").
			With("operation", "parse conflict id").
			With("id", idStr).
			Wrap(err)
	}
	conflict.ID = id

	saveID, err := ulid.Parse(saveIDStr)
	if err != nil {
		return nil, oops.Code("CONFLICT_SCAN_FAILED").
			With("operation", "parse save id").
			With("save_id", saveIDStr).
			Wrap(err)
	}
	conflict.SaveID = saveID
	conflict.Data = data
	conflict.Resolution = savegame.Resolution(resolution)

	return &conflict, nil
}
