// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// flagSetter is implemented by graphs whose object flags can be changed.
type flagSetter interface {
	SetFlag(ref dbref.Ref, flag string, on bool)
}

// AttribSetHandler runs "&ATTR obj=value" and "@ATTR obj=value". The
// attribute name arrives in Extra.
func AttribSetHandler(ctx context.Context, inv *command.Invocation) error {
	target, ok := noisyMatch(ctx, inv, inv.Left)
	if !ok {
		return nil
	}
	setAttr(ctx, inv, target, inv.Extra, inv.Right)
	return nil
}

// SetHandler changes attributes and flags:
//
//	@set obj=ATTR:value
//	@set obj/ATTR=[!]attrflag ...
//	@set obj=[!]FLAG
func SetHandler(ctx context.Context, inv *command.Invocation) error {
	if !inv.RHSPresent {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@SET", "You must specify something to set.")
	}
	objName, attrName, onAttr := strings.Cut(inv.Left, "/")
	target, ok := noisyMatch(ctx, inv, objName)
	if !ok {
		return nil
	}
	d := inv.Dispatcher()
	g := d.Graph()

	if onAttr {
		if !g.Controls(inv.Executor, target) {
			//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
			return command.ErrPermissionDenied("@SET")
		}
		set, clear, err := attribute.ParseFlags(inv.Right)
		if err != nil {
			//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
			return command.ErrInvalidArgs("@SET", "Unrecognized attribute flag.")
		}
		name := strings.ToUpper(strings.TrimSpace(attrName))
		r := d.Attributes().SetFlags(target, name, inv.Executor, set, clear)
		if r.Code == attribute.NotFound {
			inv.Notify(ctx, "No such attribute.")
			return nil
		}
		inv.Notify(ctx, r.Message(displayName(g, target), name, false))
		return nil
	}

	if name, value, ok := strings.Cut(inv.Right, ":"); ok && name != "" && !strings.ContainsAny(name, " ") {
		setAttr(ctx, inv, target, name, value)
		return nil
	}

	flag := strings.ToUpper(strings.TrimSpace(inv.Right))
	on := !strings.HasPrefix(flag, "!")
	flag = strings.TrimPrefix(flag, "!")
	if !world.IsFlag(flag) {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@SET", "I don't recognize that flag.")
	}
	if !g.Controls(inv.Executor, target) || (flag == "WIZARD" && !world.Wizard(g, inv.Executor)) {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@SET")
	}
	fs, ok := g.(flagSetter)
	if !ok {
		return command.WorldError("Flags cannot be changed here.", nil)
	}
	fs.SetFlag(target, flag, on)
	if on {
		notifyf(ctx, inv, "%s - %s set.", displayName(g, target), flag)
	} else {
		notifyf(ctx, inv, "%s - %s reset.", displayName(g, target), flag)
	}
	return nil
}

// setAttr sets or, for an empty value, clears an attribute and reports
// the result.
func setAttr(ctx context.Context, inv *command.Invocation, obj dbref.Ref, name, value string) {
	d := inv.Dispatcher()
	if !d.Graph().Controls(inv.Executor, obj) {
		inv.Notify(ctx, "Permission denied.")
		return
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	clearing := value == ""

	var r attribute.Result
	if clearing {
		r = d.Attributes().Clear(obj, name, inv.Executor)
	} else {
		r = d.Attributes().Add(obj, name, value, inv.Executor, 0)
	}
	if r.OK() && inv.Has("QUIET") {
		return
	}
	inv.Notify(ctx, r.Message(displayName(d.Graph(), obj), name, clearing))
}
