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

// matchObject resolves name as actor sees it: "me", "here", a dbref of
// something actor can see or controls, or the name of something actor
// carries, something in actor's location, or an exit out of it. Names
// match any of an object's ';'-separated aliases. It returns
// dbref.Ambiguous when more than one object at the closest distance
// matches.
func matchObject(g world.Graph, actor dbref.Ref, name string) dbref.Ref {
	name = strings.TrimSpace(name)
	loc := g.Location(actor)
	switch {
	case name == "":
		return dbref.Nothing
	case strings.EqualFold(name, "me"):
		return actor
	case strings.EqualFold(name, "here"):
		if g.Type(actor) == world.TypeRoom {
			return actor
		}
		return loc
	case dbref.IsDbref(name):
		ref, err := dbref.Parse(name)
		if err != nil || !g.Good(ref) {
			return dbref.Nothing
		}
		if !g.CanLook(actor, ref) && !g.Controls(actor, ref) {
			return dbref.Nothing
		}
		return ref
	}

	for _, candidates := range [][]dbref.Ref{g.Contents(actor), g.Contents(loc), g.Exits(loc)} {
		found := dbref.Nothing
		for _, obj := range candidates {
			if obj == actor || !world.CheckAlias(name, g.Name(obj)) {
				continue
			}
			if found != dbref.Nothing {
				return dbref.Ambiguous
			}
			found = obj
		}
		if found != dbref.Nothing {
			return found
		}
	}
	return dbref.Nothing
}

// noisyMatch is matchObject that tells the executor when nothing, or too
// much, matched.
func noisyMatch(ctx context.Context, inv *command.Invocation, name string) (dbref.Ref, bool) {
	ref := matchObject(inv.Dispatcher().Graph(), inv.Executor, name)
	switch ref {
	case dbref.Nothing:
		inv.Notify(ctx, "I don't see that here.")
		return ref, false
	case dbref.Ambiguous:
		inv.Notify(ctx, "I don't know which one you mean!")
		return ref, false
	}
	return ref, true
}

// displayName is an object's first alias.
func displayName(g world.Graph, obj dbref.Ref) string {
	name, _, _ := strings.Cut(g.Name(obj), ";")
	return name
}
