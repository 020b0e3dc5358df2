// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error at error level with structured context if it's an
// oops error.
func LogError(logger *slog.Logger, msg string, err error) {
	Log(context.Background(), logger, slog.LevelError, msg, err)
}

// Log logs err at level. For oops errors it adds the code and context;
// for standard errors it logs the error string. Extra attrs are appended.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, err error, attrs ...any) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if oc := oopsErr.Context(); len(oc) > 0 {
			attrs = append(attrs, "context", oc)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	logger.Log(ctx, level, msg, attrs...)
}
