// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// findExit looks for an exit called name out of the executor's location,
// then out of its zone master room, then out of the master room.
func findExit(g world.Graph, actor dbref.Ref, name string) dbref.Ref {
	loc := g.Location(actor)
	if exit := world.MatchExit(g, loc, name); exit != dbref.Nothing {
		return exit
	}
	if zone := g.Zone(loc); g.Good(zone) && g.Type(zone) == world.TypeRoom {
		if exit := world.MatchExit(g, zone, name); exit != dbref.Nothing {
			return exit
		}
	}
	return world.MatchExit(g, g.MasterRoom(), name)
}

// GotoHandler moves the executor through an exit.
func GotoHandler(ctx context.Context, inv *command.Invocation) error {
	g := inv.Dispatcher().Graph()
	direction := strings.TrimSpace(inv.Left)
	if direction == "" {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("GOTO", "You can't go that way.")
	}
	if strings.EqualFold(direction, "home") {
		return HomeHandler(ctx, inv)
	}

	exit := findExit(g, inv.Executor, direction)
	if exit == dbref.Nothing {
		return command.WorldError("You can't go that way.", nil)
	}
	if !passLock(inv, exit, "Basic") {
		didFail(ctx, inv, exit, "FAILURE", "You can't go that way.")
		return nil
	}
	dest := g.Location(exit)
	if dest == dbref.Home {
		dest = g.PlayerStart()
	}
	return moveTo(ctx, inv, dest)
}

// HomeHandler sends the executor to the player start room.
func HomeHandler(ctx context.Context, inv *command.Invocation) error {
	inv.Notify(ctx, "There's no place like home...")
	return moveTo(ctx, inv, inv.Dispatcher().Graph().PlayerStart())
}

// EnterHandler moves the executor into an object that allows it.
func EnterHandler(ctx context.Context, inv *command.Invocation) error {
	g := inv.Dispatcher().Graph()
	target, ok := noisyMatch(ctx, inv, inv.Left)
	if !ok {
		return nil
	}
	if t := g.Type(target); (t != world.TypeThing && t != world.TypePlayer) || target == inv.Executor {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("ENTER")
	}
	if (!g.HasFlag(target, "ENTER_OK") && !g.Controls(inv.Executor, target)) || !passLock(inv, target, "Enter") {
		didFail(ctx, inv, target, "EFAIL", "Permission denied.")
		return nil
	}
	return moveTo(ctx, inv, target)
}

// LeaveHandler moves the executor out of the object it is in.
func LeaveHandler(ctx context.Context, inv *command.Invocation) error {
	g := inv.Dispatcher().Graph()
	loc := g.Location(inv.Executor)
	if g.Type(loc) == world.TypeRoom {
		return command.WorldError("You can't leave.", nil)
	}
	if !passLock(inv, loc, "Leave") {
		didFail(ctx, inv, loc, "LFAIL", "You can't leave.")
		return nil
	}
	return moveTo(ctx, inv, g.Location(loc))
}

// moveTo moves the executor to dest, tells both places and shows the
// executor where it arrived.
func moveTo(ctx context.Context, inv *command.Invocation, dest dbref.Ref) error {
	d := inv.Dispatcher()
	g := d.Graph()
	name := displayName(g, inv.Executor)

	oemit(ctx, d, inv.Executor, name+" has left.")
	if err := g.MoveTo(ctx, inv.Executor, dest); err != nil {
		return command.WorldError("You can't go there.", err)
	}
	oemit(ctx, d, inv.Executor, name+" has arrived.")
	show(ctx, inv, dest)
	return nil
}
