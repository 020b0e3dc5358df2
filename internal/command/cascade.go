// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"maps"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// HuhMessage is shown for input that matched nothing.
const HuhMessage = "Huh?  (Type \"help\" for help.)"

// Attributes shown when a lock keeps an object's $commands from matching.
const (
	attrCommandFailure  = "COMMAND_LOCK`FAILURE"
	attrCommandOFailure = "COMMAND_LOCK`OFAILURE"
	attrCommandAFailure = "COMMAND_LOCK`AFAILURE"
	attrUseFailure      = "UFAIL"
	attrUseOFailure     = "OUFAIL"
	attrUseAFailure     = "AUFAIL"
)

// cascade looks for something other than a table command to run: enter
// and leave aliases, then $commands in order of distance from the
// executor, then zone and global exits. The first place that matches
// ends the search.
func (d *Dispatcher) cascade(ctx context.Context, st *dispatch, loc dbref.Ref, text string) (Outcome, bool) {
	g := d.graph
	exec := st.req.Executor

	if g.Mobile(exec) {
		if out, done := d.aliasMove(ctx, st, loc, text); done {
			return out, true
		}
	}

	if g.Good(loc) {
		if d.listMatch(ctx, st, loc, text, TierContents) > 0 {
			return OutcomeMatched, true
		}
		if loc != exec && d.cmdMatch(ctx, st, loc, text, TierLocation) > 0 {
			return OutcomeMatched, true
		}
	}
	if loc != exec && d.listMatch(ctx, st, exec, text, TierInventory) > 0 {
		return OutcomeMatched, true
	}

	zone := g.Zone(loc)
	if g.Good(zone) {
		if g.Type(zone) == world.TypeRoom {
			if out, done := d.exitShortcut(ctx, st, zone, text); done {
				return out, true
			}
			if d.listMatch(ctx, st, zone, text, TierZone) > 0 {
				return OutcomeMatched, true
			}
		} else if d.cmdMatch(ctx, st, zone, text, TierZone) > 0 {
			return OutcomeMatched, true
		}
	}

	if pz := g.Zone(exec); g.Good(pz) && pz != zone {
		if g.Type(pz) == world.TypeRoom {
			if d.listMatch(ctx, st, pz, text, TierPersonal) > 0 {
				return OutcomeMatched, true
			}
		} else if d.cmdMatch(ctx, st, pz, text, TierPersonal) > 0 {
			return OutcomeMatched, true
		}
	}

	if master := g.MasterRoom(); g.Good(master) && loc != master {
		if out, done := d.exitShortcut(ctx, st, master, text); done {
			return out, true
		}
		if d.listMatch(ctx, st, master, text, TierMaster) > 0 {
			return OutcomeMatched, true
		}
	}
	return 0, false
}

// aliasMove runs ENTER for an object in loc whose EALIAS matches text, or
// LEAVE when loc's LALIAS does.
func (d *Dispatcher) aliasMove(ctx context.Context, st *dispatch, loc dbref.Ref, text string) (Outcome, bool) {
	g := d.graph
	exec := st.req.Executor
	if !g.Good(loc) {
		return 0, false
	}

	if enter := d.table.FindExact("ENTER"); enter != nil && !enter.Disabled {
		for _, thing := range g.Contents(loc) {
			a := d.attrs.Get(thing, "EALIAS")
			if a == nil || !world.CheckAlias(text, a.Value()) {
				continue
			}
			st.metrics.AddMatches(TierAlias, 1)
			if !d.checkCommand(ctx, exec, enter) {
				return OutcomeDenied, true
			}
			d.runDirect(ctx, st, enter, thing.String())
			return OutcomeCommand, true
		}
	}

	if g.Type(loc) == world.TypeRoom {
		return 0, false
	}
	leave := d.table.FindExact("LEAVE")
	if leave == nil || leave.Disabled {
		return 0, false
	}
	a := d.attrs.Get(loc, "LALIAS")
	if a == nil || !world.CheckAlias(text, a.Value()) {
		return 0, false
	}
	st.metrics.AddMatches(TierAlias, 1)
	if !d.checkCommand(ctx, exec, leave) {
		return OutcomeDenied, true
	}
	d.runDirect(ctx, st, leave, "")
	return OutcomeCommand, true
}

// exitShortcut moves the executor through an exit of a zone master room
// or the master room whose name matches text.
func (d *Dispatcher) exitShortcut(ctx context.Context, st *dispatch, room dbref.Ref, text string) (Outcome, bool) {
	g := d.graph
	exec := st.req.Executor
	if world.MatchExit(g, room, text) == dbref.Nothing {
		return 0, false
	}
	gotoCmd := d.table.FindExact("GOTO")
	if gotoCmd == nil || gotoCmd.Disabled {
		return 0, false
	}
	st.metrics.AddMatches(TierExit, 1)
	if !g.Mobile(exec) || !d.checkCommand(ctx, exec, gotoCmd) {
		return OutcomeDenied, true
	}
	d.runDirect(ctx, st, gotoCmd, text)
	return OutcomeCommand, true
}

// runDirect runs a command the dispatcher chose itself, with args as its
// unparsed left side.
func (d *Dispatcher) runDirect(ctx context.Context, st *dispatch, cmd *Descriptor, args string) {
	c := &call{
		cmd:    cmd,
		raw:    cmd.Name,
		evaled: cmd.Name,
		args:   args,
		p:      parsed{left: side{text: args}},
	}
	if args != "" {
		c.raw += " " + args
		c.evaled += " " + args
	}
	if idx, ok := d.table.switches.Index(SwitchNone); ok {
		c.switches.set(idx)
	}
	d.runCommand(ctx, st, c)
}

// listMatch sweeps the $commands of everything in where.
func (d *Dispatcher) listMatch(ctx context.Context, st *dispatch, where dbref.Ref, text, tier string) int {
	n := 0
	for _, thing := range d.graph.Contents(where) {
		n += d.matchOn(ctx, st, thing, text)
	}
	st.metrics.AddMatches(tier, n)
	return n
}

// cmdMatch sweeps the $commands of a single object.
func (d *Dispatcher) cmdMatch(ctx context.Context, st *dispatch, thing dbref.Ref, text, tier string) int {
	n := d.matchOn(ctx, st, thing, text)
	st.metrics.AddMatches(tier, n)
	return n
}

// matchOn queues every $command on thing that matches text. An object
// whose lock turned the executor away is remembered for failure
// messages.
func (d *Dispatcher) matchOn(ctx context.Context, st *dispatch, thing dbref.Ref, text string) int {
	exec := st.req.Executor
	n, lockFailed := d.attrs.CommandMatch(thing, exec, text, attribute.MatchOptions{
		CheckLocks: true,
		Locks:      d.passLock,
	}, func(m attribute.Match) {
		d.queue.Enqueue(ctx, QueueEntry{
			Executor:  m.Thing,
			Enactor:   exec,
			Caller:    exec,
			Code:      m.Code,
			Args:      m.Captures,
			Registers: maps.Clone(st.env.Registers),
			Depth:     st.req.Depth + 1,
			Source:    m.Source.String() + "/" + m.Attr.Name(),
		})
	})
	if lockFailed {
		st.errs.Add(thing)
	}
	return n
}

// failCommand shows the failure messages of an object whose command or
// use lock kept its $commands from matching. It reports whether the
// object had any.
func (d *Dispatcher) failCommand(ctx context.Context, actor, thing dbref.Ref) bool {
	if !d.passLock(actor, thing, attribute.LockCommand) {
		return d.didIt(ctx, actor, thing, attrCommandFailure, attrCommandOFailure, attrCommandAFailure)
	}
	if !d.passLock(actor, thing, attribute.LockUse) {
		return d.didIt(ctx, actor, thing, attrUseFailure, attrUseOFailure, attrUseAFailure)
	}
	return false
}

// didIt shows what to actor, owhat to the others where actor is, and
// queues awhat. Each is an attribute on thing.
func (d *Dispatcher) didIt(ctx context.Context, actor, thing dbref.Ref, what, owhat, awhat string) bool {
	g := d.graph
	env := &EvalEnv{Executor: thing, Caller: actor, Enactor: actor}
	found := false

	if code, ok := d.attrs.AttrValue(thing, what); ok {
		found = true
		if msg, _ := d.eval.Eval(ctx, env, code, EvalFull, ""); msg != "" {
			d.notify.Notify(ctx, actor, msg)
		}
	}
	if code, ok := d.attrs.AttrValue(thing, owhat); ok {
		found = true
		if msg, _ := d.eval.Eval(ctx, env, code, EvalFull, ""); msg != "" {
			line := g.Name(actor) + " " + msg
			for _, other := range g.Contents(g.Location(actor)) {
				if other != actor {
					d.notify.Notify(ctx, other, line)
				}
			}
		}
	}
	if code, ok := d.attrs.AttrValue(thing, awhat); ok {
		found = true
		d.queue.Enqueue(ctx, QueueEntry{
			Executor: thing,
			Enactor:  actor,
			Caller:   actor,
			Code:     code,
			Source:   thing.String() + "/" + awhat,
		})
	}
	return found
}

// genericFailure runs HUH_COMMAND for input nothing matched.
func (d *Dispatcher) genericFailure(ctx context.Context, st *dispatch, text string) {
	huh := d.table.FindExact("HUH_COMMAND")
	if huh == nil || huh.Disabled {
		d.notify.Notify(ctx, st.req.Executor, HuhMessage)
		return
	}
	c := &call{
		cmd:    huh,
		raw:    text,
		evaled: huh.Name,
		args:   text,
		p:      parsed{left: side{text: text}},
	}
	if idx, ok := d.table.switches.Index(SwitchNone); ok {
		c.switches.set(idx)
	}
	d.runCommand(ctx, st, c)
}

// MatchCommands runs the $commands on what that match text for actor, as
// the cascade would. With room set the objects inside what are searched
// instead. It returns the number of matches queued.
func (d *Dispatcher) MatchCommands(ctx context.Context, actor, what dbref.Ref, text string, room bool) int {
	st := &dispatch{
		req:     Request{Executor: actor, Enactor: actor, Caller: actor},
		env:     &EvalEnv{Executor: actor, Caller: actor, Enactor: actor},
		errs:    NewErrorObjects(),
		metrics: NewMetricsRecorder(),
	}
	if room {
		return d.listMatch(ctx, st, what, text, TierContents)
	}
	n := d.cmdMatch(ctx, st, what, text, TierLocation)
	if n == 0 {
		st.errs.DrainAndRun(func(obj dbref.Ref) bool { return d.failCommand(ctx, actor, obj) })
	}
	return n
}
