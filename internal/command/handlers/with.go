// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/world"
)

// WithHandler matches the text after '=' against the $commands of one
// object, or with /room against the objects in a room.
func WithHandler(ctx context.Context, inv *command.Invocation) error {
	d := inv.Dispatcher()
	g := d.Graph()
	exec := inv.Executor

	what, ok := noisyMatch(ctx, inv, inv.Left)
	if !ok {
		return nil
	}
	room := inv.Has("ROOM")

	if !g.CanLook(exec, what) {
		zone := g.Zone(exec)
		switch {
		case room && what != g.MasterRoom() && what != zone:
			inv.Notify(ctx, "I don't see that here.")
			return nil
		case room && what == zone && g.Type(what) != world.TypeRoom:
			inv.Notify(ctx, "Make room! Make room!")
			return nil
		case !room && (what != zone || g.Type(what) == world.TypeRoom):
			inv.Notify(ctx, "I don't see that here.")
			return nil
		}
	}
	if room && g.Type(what) != world.TypeRoom && what != g.Location(exec) {
		inv.Notify(ctx, "Make room! Make room!")
		return nil
	}

	if d.MatchCommands(ctx, exec, what, inv.Right, room) == 0 {
		inv.Notify(ctx, "No matching command.")
	}
	return nil
}
