// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/command"
)

var hookSwitches = []struct {
	name string
	kind command.HookKind
}{
	{"AFTER", command.HookAfter},
	{"BEFORE", command.HookBefore},
	{"IGNORE", command.HookIgnore},
	{"OVERRIDE", command.HookOverride},
	{"EXTEND", command.HookExtend},
}

// hook is @hook/<kind> command=object[,attribute]. With no right side the
// hook is removed.
func (b *Builtins) hook(ctx context.Context, inv *command.Invocation) error {
	t := inv.Dispatcher().Table()

	if inv.Has("LIST") {
		cmd := t.Lookup(inv.Left)
		if cmd == nil {
			//nolint:wrapcheck // ErrUnknownCommand creates a structured oops error
			return command.ErrUnknownCommand(inv.Left)
		}
		listHooks(ctx, inv, cmd, true)
		return nil
	}

	kind, found := command.HookKind(0), false
	for _, sw := range hookSwitches {
		if inv.Has(sw.name) {
			kind, found = sw.kind, true
			break
		}
	}
	if !found {
		inv.Notify(ctx, "You must give a switch for @hook.")
		return nil
	}
	inplace := inv.Has("INPLACE")
	redirects := kind == command.HookOverride || kind == command.HookExtend
	if inplace && !redirects {
		inv.Notify(ctx, "You can only use /inplace with /override or /extend.")
		return nil
	}

	cmd := t.Lookup(inv.Left)
	if cmd == nil {
		//nolint:wrapcheck // ErrUnknownCommand creates a structured oops error
		return command.ErrUnknownCommand(inv.Left)
	}
	if cmd.Redact != command.RedactNone {
		inv.Notify(ctx, "Hooks not allowed with that command.")
		return nil
	}

	var obj, attr string
	if len(inv.RightArgs) > 0 {
		obj = strings.TrimSpace(inv.RightArgs[0])
	}
	if len(inv.RightArgs) > 1 {
		attr = strings.ToUpper(strings.TrimSpace(inv.RightArgs[1]))
	}

	c := command.Customization{Kind: command.CustomHook, Command: cmd.Name, Hook: kind.String(), Inplace: inplace}
	switch {
	case !inv.RHSPresent:
		t.SetHook(cmd, kind, nil)
		b.record(ctx, c)
		notifyf(ctx, inv, "Hook removed from %s.", cmd.Name)
		return nil
	case obj == "" && redirects:
		inv.Notify(ctx, "You must give an object.")
		return nil
	case obj == "" || (attr == "" && !redirects):
		inv.Notify(ctx, "You must give both an object and attribute.")
		return nil
	}

	target := matchObject(inv.Dispatcher().Graph(), inv.Executor, obj)
	if !inv.Dispatcher().Graph().Good(target) {
		inv.Notify(ctx, "Invalid hook object.")
		return nil
	}
	h := &command.Hook{Obj: target, Attr: attr, Inplace: inplace}
	t.SetHook(cmd, kind, h)
	c.Arg = h.String()
	b.record(ctx, c)
	notifyf(ctx, inv, "Hook set for %s.", cmd.Name)
	return nil
}

// listHooks shows the hooks set on cmd. With verbose a command without
// hooks says so.
func listHooks(ctx context.Context, inv *command.Invocation, cmd *command.Descriptor, verbose bool) {
	shown := false
	for _, sw := range hookSwitches {
		h := cmd.Hook(sw.kind)
		if h == nil {
			continue
		}
		shown = true
		line := "@hook/" + strings.ToLower(sw.name) + ": " + h.String()
		if h.Inplace {
			line += " (inplace)"
		}
		inv.Notify(ctx, line)
	}
	if !shown && verbose {
		notifyf(ctx, inv, "No hooks set for %s.", cmd.Name)
	}
}
