// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package handlers implements the builtin commands and registers them in a
// command table.
package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// LookHandler describes the executor's location or a nearby object.
func LookHandler(ctx context.Context, inv *command.Invocation) error {
	g := inv.Dispatcher().Graph()
	target := g.Location(inv.Executor)
	if name := strings.TrimSpace(inv.Left); name != "" {
		var ok bool
		if target, ok = noisyMatch(ctx, inv, name); !ok {
			return nil
		}
	}
	if !g.Good(target) {
		return command.WorldError("You can't see anything here.", nil)
	}
	show(ctx, inv, target)
	return nil
}

// show sends the executor the name, description, contents and exits of
// target.
func show(ctx context.Context, inv *command.Invocation, target dbref.Ref) {
	d := inv.Dispatcher()
	g := d.Graph()

	title := displayName(g, target)
	if g.Controls(inv.Executor, target) {
		title += "(" + target.String() + ")"
	}
	inv.Notify(ctx, title)

	if desc, ok := d.Attributes().AttrValue(target, "DESCRIBE"); ok {
		env := &command.EvalEnv{Executor: target, Caller: inv.Executor, Enactor: inv.Executor}
		if text, _ := d.Evaluator().Eval(ctx, env, desc, command.EvalFull, ""); text != "" {
			inv.Notify(ctx, text)
		}
	}

	var contents []string
	for _, obj := range g.Contents(target) {
		if obj != inv.Executor && !g.HasFlag(obj, "DARK") {
			contents = append(contents, displayName(g, obj))
		}
	}
	if len(contents) > 0 {
		inv.Notify(ctx, "Contents:")
		for _, name := range contents {
			inv.Notify(ctx, name)
		}
	}

	if g.Type(target) != world.TypeRoom {
		return
	}
	var exits []string
	for _, exit := range g.Exits(target) {
		if !g.HasFlag(exit, "DARK") {
			exits = append(exits, displayName(g, exit))
		}
	}
	if len(exits) > 0 {
		inv.Notify(ctx, "Obvious exits:")
		inv.Notify(ctx, strings.Join(exits, "  "))
	}
}
