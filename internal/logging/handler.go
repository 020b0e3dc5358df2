// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package logging builds the game's structured logger. Records carry the
// service name, the build version and, when present, the trace and span
// of the command being dispatched.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// traceHandler adds service, version and trace context to each record.
type traceHandler struct {
	handler slog.Handler
	service string
	version string
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{handler: h.handler.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{handler: h.handler.WithGroup(name), service: h.service, version: h.version}
}

// Options configures Setup.
type Options struct {
	// Format is "json" (the default) or "text".
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	// Level is debug, info, warn or error. The default is info.
	Level string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	// File, when set, sends records to a rotated file instead of stderr.
	File       string `koanf:"file" json:"file,omitempty"`
	MaxSizeMB  int    `koanf:"max_size_mb" json:"max_size_mb,omitempty" jsonschema:"minimum=0"`
	MaxBackups int    `koanf:"max_backups" json:"max_backups,omitempty" jsonschema:"minimum=0"`
	MaxAgeDays int    `koanf:"max_age_days" json:"max_age_days,omitempty" jsonschema:"minimum=0"`
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, oops.Code("LOG_LEVEL_INVALID").With("level", name).Errorf("unknown log level %q", name)
}

// FileWriter returns a size-rotated log file.
func FileWriter(opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup creates a logger. Records go to w, or to the rotated file named
// in opts, or to stderr. The returned closer releases the file.
func Setup(service, version string, opts Options, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	switch {
	case w != nil:
	case opts.File != "":
		fw := FileWriter(opts)
		w, closer = fw, fw
	default:
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if opts.Format == "text" {
		base = slog.NewTextHandler(w, hopts)
	} else {
		base = slog.NewJSONHandler(w, hopts)
	}

	return slog.New(&traceHandler{handler: base, service: service, version: version}), closer, nil
}
