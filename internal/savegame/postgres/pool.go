// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package postgres provides pgx-backed implementations of the savegame
// repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the subset of pgxpool.Pool the repositories use.
// pgxmock satisfies it, so repository tests run without a database.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
