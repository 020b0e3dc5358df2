// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"fmt"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
)

// remit sends msg to everything in room.
func remit(ctx context.Context, d *command.Dispatcher, room dbref.Ref, msg string) {
	for _, obj := range d.Graph().Contents(room) {
		d.Notify(ctx, obj, msg)
	}
}

// oemit sends msg to everything in actor's location except actor.
func oemit(ctx context.Context, d *command.Dispatcher, actor dbref.Ref, msg string) {
	for _, obj := range d.Graph().Contents(d.Graph().Location(actor)) {
		if obj != actor {
			d.Notify(ctx, obj, msg)
		}
	}
}

// notifyf formats and sends a message to the executor.
func notifyf(ctx context.Context, inv *command.Invocation, format string, args ...any) {
	inv.Notify(ctx, fmt.Sprintf(format, args...))
}

// didFail shows the evaluated attribute attr of thing to the executor, or
// def when thing has no such attribute.
func didFail(ctx context.Context, inv *command.Invocation, thing dbref.Ref, attr, def string) {
	d := inv.Dispatcher()
	code, ok := d.Attributes().AttrValue(thing, attr)
	if !ok {
		inv.Notify(ctx, def)
		return
	}
	env := &command.EvalEnv{Executor: thing, Caller: inv.Executor, Enactor: inv.Executor}
	if msg, _ := d.Evaluator().Eval(ctx, env, code, command.EvalFull, ""); msg != "" {
		inv.Notify(ctx, msg)
	}
}

// passLock reports whether the executor passes the named lock on thing.
func passLock(inv *command.Invocation, thing dbref.Ref, name string) bool {
	d := inv.Dispatcher()
	return d.Locks().NamedLock(thing, name).Eval(d.LockEnv(), inv.Executor, thing)
}
