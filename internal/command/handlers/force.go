// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/world"
)

// ForceHandler makes an object the executor controls run commands. With
// /inplace the commands run before the executor continues.
func ForceHandler(ctx context.Context, inv *command.Invocation) error {
	if !inv.RHSPresent || strings.TrimSpace(inv.Right) == "" {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@FORCE", "Force it to do what?")
	}
	target, ok := noisyMatch(ctx, inv, inv.Left)
	if !ok {
		return nil
	}
	d := inv.Dispatcher()
	g := d.Graph()
	if !g.Controls(inv.Executor, target) || (world.IsGod(g, target) && !world.IsGod(g, inv.Executor)) {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@FORCE")
	}
	d.Queue().Enqueue(ctx, command.QueueEntry{
		Executor: target,
		Enactor:  inv.Executor,
		Caller:   inv.Executor,
		Code:     inv.Right,
		Inplace:  inv.Has("INPLACE"),
		Depth:    inv.Depth + 1,
		Source:   "@force by " + inv.Executor.String(),
	})
	return nil
}
