// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/world"
	"github.com/holomush/pennmush/pkg/errutil"
)

// record persists a customization made while the game runs. Failures are
// logged; the change itself has already been made.
func (b *Builtins) record(ctx context.Context, c command.Customization) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.RecordCustomization(ctx, c); err != nil {
		errutil.Log(ctx, b.logger, slog.LevelWarn, "failed to persist command customization", err,
			"kind", string(c.Kind), "command", c.Command)
	}
}

// command is @command. Without a switch that changes the command it shows
// how the command is set up.
func (b *Builtins) command(ctx context.Context, inv *command.Invocation) error {
	t := inv.Dispatcher().Table()
	g := inv.Dispatcher().Graph()
	wizard := world.Wizard(g, inv.Executor)

	if inv.Has("LIST") {
		notifyf(ctx, inv, "Commands: %s", strings.Join(t.List(command.ListAll), " "))
		return nil
	}
	name := strings.TrimSpace(inv.Left)
	if name == "" {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@COMMAND", "You must specify a command.")
	}

	switch {
	case inv.Has("ADD"):
		return b.commandAdd(ctx, inv, name, wizard)
	case inv.Has("ALIAS"):
		return b.commandAlias(ctx, inv, name, wizard)
	case inv.Has("CLONE"):
		return b.commandClone(ctx, inv, name, wizard)
	case inv.Has("DELETE"):
		return b.commandDelete(ctx, inv, name, wizard)
	}

	cmd := t.Find(name)
	if cmd == nil {
		//nolint:wrapcheck // ErrUnknownCommand creates a structured oops error
		return command.ErrUnknownCommand(name)
	}
	if wizard {
		switch {
		case inv.Has("ON"), inv.Has("ENABLE"):
			if t.SetDisabled(cmd, false) {
				b.record(ctx, command.Customization{Kind: command.CustomEnable, Command: cmd.Name})
			}
		case inv.Has("OFF"), inv.Has("DISABLE"):
			if cmd.Name == "@COMMAND" {
				inv.Notify(ctx, "@command is ALWAYS enabled.")
			} else if t.SetDisabled(cmd, true) {
				b.record(ctx, command.Customization{Kind: command.CustomDisable, Command: cmd.Name})
			}
		}
		if inv.Has("RESTRICT") {
			if strings.TrimSpace(inv.Right) == "" {
				inv.Notify(ctx, "How do you want to restrict the command?")
				return nil
			}
			if err := t.Restrict(cmd, inv.Right); err != nil {
				errutil.Log(ctx, b.logger, slog.LevelInfo, "restrict failed", err, "command", cmd.Name)
				inv.Notify(ctx, "Restrict attempt failed.")
			} else {
				b.record(ctx, command.Customization{Kind: command.CustomRestrict, Command: cmd.Name, Arg: inv.Right})
			}
		}
	}
	if !inv.Has("QUIET") {
		b.commandInfo(ctx, inv, cmd)
	}
	return nil
}

func (b *Builtins) commandAdd(ctx context.Context, inv *command.Invocation, name string, wizard bool) error {
	if !wizard {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@COMMAND")
	}
	if inv.Has("NOEVAL") {
		inv.Notify(ctx, "WARNING: /NOEVAL no longer creates a Noparse command. Use /NOPARSE if that's what you meant.")
	}
	c := command.Customization{
		Kind:    command.CustomAdd,
		Command: strings.ToUpper(name),
		Policy: command.ParsePolicy{
			NoParse:   inv.Has("NOPARSE"),
			RSNoParse: inv.Has("RSNOPARSE"),
			EqSplit:   inv.Has("EQSPLIT"),
			LSArgs:    inv.Has("LSARGS"),
			RSArgs:    inv.Has("RSARGS"),
		},
	}
	if err := inv.Dispatcher().Table().Apply(c); err != nil {
		return err //nolint:wrapcheck // Apply returns structured oops errors
	}
	b.record(ctx, c)
	notifyf(ctx, inv, "Command %s added.", c.Command)
	return nil
}

func (b *Builtins) commandAlias(ctx context.Context, inv *command.Invocation, name string, wizard bool) error {
	if !wizard {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@COMMAND")
	}
	alias := strings.ToUpper(strings.TrimSpace(inv.Right))
	if command.ValidateCommandName(alias) != nil {
		inv.Notify(ctx, "I can't alias a command to that!")
		return nil
	}
	t := inv.Dispatcher().Table()
	cmd := t.Find(name)
	if cmd == nil || !t.Alias(cmd.Name, alias) {
		inv.Notify(ctx, "Unable to set alias.")
		return nil
	}
	b.record(ctx, command.Customization{Kind: command.CustomAlias, Command: cmd.Name, Arg: alias})
	if !inv.Has("QUIET") {
		inv.Notify(ctx, "Alias set.")
	}
	return nil
}

func (b *Builtins) commandClone(ctx context.Context, inv *command.Invocation, name string, wizard bool) error {
	if !wizard {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@COMMAND")
	}
	t := inv.Dispatcher().Table()
	cmd := t.Find(name)
	if cmd == nil {
		//nolint:wrapcheck // ErrUnknownCommand creates a structured oops error
		return command.ErrUnknownCommand(name)
	}
	clone := strings.ToUpper(strings.TrimSpace(inv.Right))
	if command.ValidateCommandName(clone) != nil || t.Clone(cmd.Name, clone) == nil {
		inv.Notify(ctx, "Bad command name.")
		return nil
	}
	b.record(ctx, command.Customization{Kind: command.CustomClone, Command: cmd.Name, Arg: clone})
	inv.Notify(ctx, "Command cloned.")
	return nil
}

func (b *Builtins) commandDelete(ctx context.Context, inv *command.Invocation, name string, wizard bool) error {
	if !wizard {
		//nolint:wrapcheck // ErrPermissionDenied creates a structured oops error
		return command.ErrPermissionDenied("@COMMAND")
	}
	t := inv.Dispatcher().Table()
	name = strings.ToUpper(name)
	cmd := t.FindExact(name)
	if cmd == nil || cmd.Internal() {
		//nolint:wrapcheck // ErrUnknownCommand creates a structured oops error
		return command.ErrUnknownCommand(name)
	}
	alias := t.IsAlias(name)
	if !t.Delete(name) {
		inv.Notify(ctx, "You can't delete built-in commands. @disable them instead.")
		return nil
	}
	b.record(ctx, command.Customization{Kind: command.CustomDelete, Command: name})
	if alias {
		notifyf(ctx, inv, "Removed %s from command table.", name)
	} else {
		notifyf(ctx, inv, "Removed %s and aliases from command table.", name)
	}
	return nil
}

// commandInfo shows how cmd is set up.
func (b *Builtins) commandInfo(ctx context.Context, inv *command.Invocation, cmd *command.Descriptor) {
	t := inv.Dispatcher().Table()

	state := "Enabled"
	if cmd.Disabled {
		state = "Disabled"
	}
	notifyf(ctx, inv, "Name       : %s (%s)", cmd.Name, state)

	var flags []string
	if cmd.AnySwitch {
		flags = append(flags, "Switches")
	}
	if cmd.Policy.EqSplit {
		flags = append(flags, "Eqsplit")
	}
	switch cmd.Logging {
	case command.LogArgs:
		flags = append(flags, "LogArgs")
	case command.LogName:
		flags = append(flags, "LogName")
	}
	if cmd.Deprecated {
		flags = append(flags, "Deprecated")
	}
	notifyf(ctx, inv, "Flags      : %s", strings.Join(flags, " "))
	notifyf(ctx, inv, "Lock       : %s", cmd.Lock)
	if cmd.RestrictMessage != "" {
		notifyf(ctx, inv, "Failure Msg: %s", cmd.RestrictMessage)
	}
	notifyf(ctx, inv, "Switches   : %s", strings.Join(t.Switches().Names(cmd.Switches), " "))
	if aliases := t.Aliases(cmd); len(aliases) > 0 {
		notifyf(ctx, inv, "Aliases    : %s", strings.Join(aliases, " "))
	}

	left := sideInfo(cmd.Policy.LSArgs, cmd.Policy.LSSpace, cmd.Policy.NoParse)
	if cmd.Policy.EqSplit {
		notifyf(ctx, inv, "Leftside   : %s", left)
		notifyf(ctx, inv, "Rightside  : %s", sideInfo(cmd.Policy.RSArgs, cmd.Policy.RSSpace, cmd.Policy.RSNoParse))
	} else {
		notifyf(ctx, inv, "Arguments  : %s", left)
	}
	listHooks(ctx, inv, cmd, false)
}

func sideInfo(args, space, noparse bool) string {
	var parts []string
	switch {
	case args && space:
		parts = append(parts, "Space-Args")
	case args:
		parts = append(parts, "Args")
	}
	if noparse {
		parts = append(parts, "Noparse")
	}
	return strings.Join(parts, " ")
}
