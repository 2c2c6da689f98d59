// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/veyrm/accountd/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container and applies all
// migrations, returning a connected pool.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accountd_test"),
		postgres.WithUsername("accountd"),
		postgres.WithPassword("accountd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("Connect", func() {
	var pool *pgxpool.Pool
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	It("returns a pool that answers pings", func() {
		ctx := context.Background()
		Expect(pool.Ping(ctx)).To(Succeed())
	})

	Describe("migrated schema", func() {
		tables := []string{
			"users",
			"user_sessions",
			"one_time_tokens",
			"login_history",
			"save_games",
			"save_conflicts",
			"save_backups",
		}

		It("creates every table", func() {
			ctx := context.Background()
			for _, table := range tables {
				var exists bool
				err := pool.QueryRow(ctx,
					`SELECT EXISTS (SELECT 1 FROM information_schema.tables
					 WHERE table_schema = 'public' AND table_name = $1)`, table).Scan(&exists)
				Expect(err).NotTo(HaveOccurred())
				Expect(exists).To(BeTrue(), "table %s should exist", table)
			}
		})

		It("enforces username uniqueness", func() {
			ctx := context.Background()
			insert := `INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
				VALUES ($1, $2, $3, 'h', 's', now(), now())`

			_, err := pool.Exec(ctx, insert, "01JA0000000000000000000001", "dupe", "first@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, insert, "01JA0000000000000000000002", "dupe", "second@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("enforces case-insensitive email uniqueness", func() {
			ctx := context.Background()
			insert := `INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
				VALUES ($1, $2, $3, 'h', 's', now(), now())`

			_, err := pool.Exec(ctx, insert, "01JA0000000000000000000003", "alpha", "Case@Example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, insert, "01JA0000000000000000000004", "beta", "case@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("cascades session deletes when a user is removed", func() {
			ctx := context.Background()
			userID := "01JA0000000000000000000005"

			_, err := pool.Exec(ctx,
				`INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
				 VALUES ($1, 'cascade', 'cascade@example.com', 'h', 's', now(), now())`, userID)
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx,
				`INSERT INTO user_sessions (id, user_id, token_hash, refresh_token_hash, created_at, expires_at, refresh_expires_at, last_used_at, remember_me, revoked)
				 VALUES ('01JA0000000000000000000006', $1, 'th', 'rth', now(), now() + interval '4 hours', now() + interval '30 days', now(), false, false)`,
				userID)
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
			Expect(err).NotTo(HaveOccurred())

			var count int
			err = pool.QueryRow(ctx,
				`SELECT count(*) FROM user_sessions WHERE user_id = $1`, userID).Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("nulls login history when a user is removed", func() {
			ctx := context.Background()
			userID := "01JA0000000000000000000007"

			_, err := pool.Exec(ctx,
				`INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
				 VALUES ($1, 'audited', 'audited@example.com', 'h', 's', now(), now())`, userID)
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx,
				`INSERT INTO login_history (id, user_id, identifier, success, attempted_at)
				 VALUES ('01JA0000000000000000000008', $1, 'audited', true, now())`, userID)
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
			Expect(err).NotTo(HaveOccurred())

			var orphaned int
			err = pool.QueryRow(ctx,
				`SELECT count(*) FROM login_history WHERE user_id IS NULL AND identifier = 'audited'`).Scan(&orphaned)
			Expect(err).NotTo(HaveOccurred())
			Expect(orphaned).To(Equal(1))
		})
	})
})
