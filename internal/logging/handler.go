// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package logging wires slog output for the account service. Every
// record is stamped with the service name and build version so log
// lines from accountd, the sweep job, and the migration runner can be
// told apart when they share a sink, and trace/span IDs are attached
// when a request context carries an OpenTelemetry span.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// stampHandler decorates an inner slog.Handler with the service
// identity and any trace context found on the record's context.
type stampHandler struct {
	inner   slog.Handler
	service string
	version string
}

func (h *stampHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.inner.Handle(ctx, r)
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{inner: h.inner.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{inner: h.inner.WithGroup(name), service: h.service, version: h.version}
}

// Setup builds a stamped logger writing to w. format selects "text"
// for human-readable output (the accountd CLI default on a terminal);
// anything else, including empty, means JSON for log shippers. A nil
// w falls back to os.Stderr so stdout stays free for command output.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var inner slog.Handler
	if format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&stampHandler{inner: inner, service: service, version: version})
}

// SetDefault installs a Setup logger as the process default so that
// package-level slog calls in the repositories and services are
// stamped too.
func SetDefault(service, version, format string) {
	slog.SetDefault(Setup(service, version, format, nil))
}
