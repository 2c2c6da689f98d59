package main

import (
	"context"

	"github.com/veyrm/accountd/internal/config"
	"github.com/veyrm/accountd/internal/observability"
)

// SweepDeps contains injectable dependencies for the sweep command.
// All fields with nil values will use their default implementations.
type SweepDeps struct {
	// JobFactory builds the sweep job from a database URL. The returned
	// func releases the job's resources (connection pool).
	// Default: newSweepJob
	JobFactory func(ctx context.Context, databaseURL string, cfg config.Config) (SweepJob, func(), error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// SweepJob runs one cleanup pass over the database.
type SweepJob interface {
	Run(ctx context.Context) error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}
