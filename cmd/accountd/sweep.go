// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/veyrm/accountd/internal/auth"
	authpg "github.com/veyrm/accountd/internal/auth/postgres"
	"github.com/veyrm/accountd/internal/config"
	"github.com/veyrm/accountd/internal/logging"
	"github.com/veyrm/accountd/internal/observability"
	"github.com/veyrm/accountd/internal/savegame"
	savepg "github.com/veyrm/accountd/internal/savegame/postgres"
	"github.com/veyrm/accountd/internal/store"
)

// sweepConfig holds the command-line switches for the sweep command.
type sweepConfig struct {
	once bool
}

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	cfg := &sweepConfig{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired sessions, tokens, and stale save backups",
		Long: `Run the cleanup sweep which deletes dead sessions, expired one-time
tokens, old login history, and surplus save backups. By default it runs
as a daemon on an interval; use --once for a single pass.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweepWithDeps(cmd.Context(), cmd, cfg, nil)
		},
	}

	cmd.Flags().BoolVar(&cfg.once, "once", false, "run a single sweep and exit")
	cmd.Flags().Duration("sweep-interval", config.DefaultSweepInterval, "time between sweeps in daemon mode")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	return cmd
}

// runSweepWithDeps starts the sweep with injectable dependencies.
// If deps is nil, default implementations are used.
func runSweepWithDeps(ctx context.Context, cmd *cobra.Command, cfg *sweepConfig, deps *SweepDeps) error {
	if deps == nil {
		deps = &SweepDeps{}
	}
	if deps.JobFactory == nil {
		deps.JobFactory = newSweepJob
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	appCfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	databaseURL, err := resolveDatabaseURL(appCfg)
	if err != nil {
		return err
	}

	logging.SetDefault("accountd", version, appCfg.LogFormat)

	job, release, err := deps.JobFactory(ctx, databaseURL, appCfg)
	if err != nil {
		return oops.Code("SWEEP_FAILED").With("operation", "connect").Wrap(err)
	}
	defer release()

	if cfg.once {
		if err := job.Run(ctx); err != nil {
			return oops.Code("SWEEP_FAILED").Wrap(err)
		}
		cmd.Println("Sweep completed")
		return nil
	}

	return runSweepDaemon(ctx, cmd, appCfg, job, deps)
}

// runSweepDaemon runs the sweep on a ticker until a signal or error.
func runSweepDaemon(ctx context.Context, cmd *cobra.Command, appCfg config.Config, job SweepJob, deps *SweepDeps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer ObservabilityServer
	if appCfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(appCfg.MetricsAddr, func() bool { return true })
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("SWEEP_FAILED").With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(appCfg.SweepInterval)
	defer ticker.Stop()

	cmd.Println("Sweep daemon started")
	slog.Info("sweep daemon ready", "interval", appCfg.SweepInterval.String())

	// First pass immediately, then on each tick
	if err := job.Run(ctx); err != nil {
		slog.Error("sweep pass failed", "error", err)
	}

loop:
	for {
		select {
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				slog.Error("sweep pass failed", "error", err)
			}
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig)
			break loop
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down")
			break loop
		}
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// sweepJob bundles the services one cleanup pass touches.
type sweepJob struct {
	authSvc   *auth.Service
	saveSvc   *savegame.Service
	retention time.Duration
}

// newSweepJob connects to the database and wires the auth and savegame
// services the sweep needs.
func newSweepJob(ctx context.Context, databaseURL string, cfg config.Config) (SweepJob, func(), error) {
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	authSvc, err := auth.NewService(
		cfg.ToAuthConfig(),
		authpg.NewUserRepository(pool),
		authpg.NewSessionRepository(pool),
		authpg.NewOneTimeTokenRepository(pool),
		authpg.NewLoginAttemptRepository(pool),
		auth.NewArgon2idHasher(),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	saveSvc, err := savegame.NewService(
		savepg.NewSaveRepository(pool),
		savepg.NewConflictRepository(pool),
		savepg.NewBackupRepository(pool),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	saveSvc.WithBackupKeep(cfg.BackupKeep)

	job := &sweepJob{
		authSvc:   authSvc,
		saveSvc:   saveSvc,
		retention: cfg.LoginHistoryRetention,
	}
	return job, pool.Close, nil
}

// Run executes one cleanup pass. Each stage is attempted even if an
// earlier one fails; the errors are joined.
func (j *sweepJob) Run(ctx context.Context) error {
	var errs []error

	stats, err := j.authSvc.CleanupExpired(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		slog.Info("expired rows removed",
			"sessions", stats.Sessions,
			"tokens", stats.OneTimeTokens)
	}

	pruned, err := j.authSvc.PruneLoginHistory(ctx, time.Now().Add(-j.retention))
	if err != nil {
		errs = append(errs, err)
	} else if pruned > 0 {
		slog.Info("login history pruned", "deleted", pruned)
	}

	backups, err := j.saveSvc.PruneBackups(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if backups > 0 {
		slog.Info("save backups pruned", "deleted", backups)
	}

	return errors.Join(errs...)
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error so a failed server triggers graceful shutdown.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
