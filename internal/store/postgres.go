// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection defaults.
const (
	defaultMaxConns       = 10
	defaultConnectTimeout = 30 * time.Second
	retryBase             = 500 * time.Millisecond
)

// Connect opens a pgx connection pool and verifies it with a ping.
// The ping is retried with fibonacci backoff until the timeout, so the
// service survives starting before its database does.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := parsePoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithMaxDuration(defaultConnectTimeout, retry.NewFibonacci(retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}

// parsePoolConfig parses a DSN and fills in pool defaults.
func parsePoolConfig(dsn string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse connection string").
			Wrap(err)
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = defaultMaxConns
	}
	return cfg, nil
}
