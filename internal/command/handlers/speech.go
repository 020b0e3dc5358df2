// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/command"
)

// SayHandler speaks to the executor's location.
func SayHandler(ctx context.Context, inv *command.Invocation) error {
	d := inv.Dispatcher()
	notifyf(ctx, inv, "You say, \"%s\"", inv.Left)
	oemit(ctx, d, inv.Executor, displayName(d.Graph(), inv.Executor)+" says, \""+inv.Left+"\"")
	return nil
}

// PoseHandler shows an action to the executor's location. With /nospace
// the text follows the name directly.
func PoseHandler(ctx context.Context, inv *command.Invocation) error {
	d := inv.Dispatcher()
	sep := " "
	if inv.Has("NOSPACE") {
		sep = ""
	}
	remit(ctx, d, d.Graph().Location(inv.Executor), displayName(d.Graph(), inv.Executor)+sep+inv.Left)
	return nil
}

// SemiposeHandler is a pose with no space after the name.
func SemiposeHandler(ctx context.Context, inv *command.Invocation) error {
	d := inv.Dispatcher()
	remit(ctx, d, d.Graph().Location(inv.Executor), displayName(d.Graph(), inv.Executor)+inv.Left)
	return nil
}

// EmitHandler shows text, unattributed, to the executor's location.
func EmitHandler(ctx context.Context, inv *command.Invocation) error {
	if inv.Left == "" {
		return nil
	}
	d := inv.Dispatcher()
	remit(ctx, d, d.Graph().Location(inv.Executor), inv.Left)
	return nil
}

// PemitHandler sends text to one object.
func PemitHandler(ctx context.Context, inv *command.Invocation) error {
	if !inv.RHSPresent {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@PEMIT", "Emit what to whom?")
	}
	target, ok := noisyMatch(ctx, inv, inv.Left)
	if !ok {
		return nil
	}
	if inv.Right != "" {
		inv.Dispatcher().Notify(ctx, target, inv.Right)
	}
	return nil
}

// ThinkHandler shows text to the executor only.
func ThinkHandler(ctx context.Context, inv *command.Invocation) error {
	inv.Notify(ctx, inv.Left)
	return nil
}

func (b *Builtins) chat(ctx context.Context, inv *command.Invocation) error {
	if b.channels == nil {
		inv.Notify(ctx, "Channels are not available.")
		return nil
	}
	channel := strings.TrimSpace(inv.Left)
	if channel == "" || !inv.RHSPresent {
		//nolint:wrapcheck // ErrInvalidArgs creates a structured oops error
		return command.ErrInvalidArgs("@CHAT", "What do you want to say to that channel?")
	}
	if err := b.channels.Send(ctx, inv.Executor, channel, inv.Right); err != nil {
		return command.WorldError("No such channel.", err)
	}
	return nil
}
