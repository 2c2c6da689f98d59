// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/veyrm/accountd/internal/store"
)

// SchemaStatus holds the migration state reported by the status command.
type SchemaStatus struct {
	Version uint              `json:"version"`
	Dirty   bool              `json:"dirty"`
	Applied []MigrationStatus `json:"applied"`
	Pending []MigrationStatus `json:"pending"`
}

// MigrationStatus describes a single migration file.
type MigrationStatus struct {
	Version uint   `json:"version"`
	Name    string `json:"name"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current schema version and the applied and pending migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	appCfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	databaseURL, err := resolveDatabaseURL(appCfg)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Debug("error closing migrator", "error", closeErr)
		}
	}()

	status, err := collectSchemaStatus(migrator)
	if err != nil {
		return err
	}

	var output string
	if cfg.jsonOutput {
		data, marshalErr := json.MarshalIndent(status, "", "  ")
		if marshalErr != nil {
			return oops.Code("STATUS_FAILED").Wrap(marshalErr)
		}
		output = string(data)
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

// collectSchemaStatus gathers the schema version and migration lists.
func collectSchemaStatus(m *store.Migrator) (*SchemaStatus, error) {
	status := &SchemaStatus{}

	version, dirty, err := m.Version()
	if err == nil {
		status.Version = version
		status.Dirty = dirty
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return nil, oops.Code("STATUS_FAILED").With("operation", "applied migrations").Wrap(err)
	}
	status.Applied, err = describeMigrations(applied)
	if err != nil {
		return nil, err
	}

	pending, err := m.PendingMigrations()
	if err != nil {
		return nil, oops.Code("STATUS_FAILED").With("operation", "pending migrations").Wrap(err)
	}
	status.Pending, err = describeMigrations(pending)
	if err != nil {
		return nil, err
	}

	return status, nil
}

func describeMigrations(versions []uint) ([]MigrationStatus, error) {
	out := make([]MigrationStatus, 0, len(versions))
	for _, v := range versions {
		name, err := store.MigrationName(v)
		if err != nil {
			return nil, oops.Code("STATUS_FAILED").With("version", v).Wrap(err)
		}
		out = append(out, MigrationStatus{Version: v, Name: name})
	}
	return out, nil
}

// formatStatusTable formats the schema status as a human-readable table.
func formatStatusTable(status *SchemaStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "Schema version:\t%d (dirty: %v)\n", status.Version, status.Dirty)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "MIGRATION\tNAME\tSTATE")
	_, _ = fmt.Fprintln(w, "---------\t----\t-----")

	for _, m := range status.Applied {
		_, _ = fmt.Fprintf(w, "%06d\t%s\tapplied\n", m.Version, m.Name)
	}
	for _, m := range status.Pending {
		_, _ = fmt.Fprintf(w, "%06d\t%s\tpending\n", m.Version, m.Name)
	}

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
