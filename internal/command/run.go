// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/pkg/errutil"
)

// runCommand runs the hooks and handler of a resolved command. It returns
// false when the ignore hook vetoed the command, in which case the input
// goes on to $command matching.
func (d *Dispatcher) runCommand(ctx context.Context, st *dispatch, c *call) bool {
	cmd := c.cmd
	exec := st.req.Executor
	g := d.graph

	if cmd.Deprecated {
		d.notify.Notify(ctx, g.Owner(exec),
			fmt.Sprintf("Deprecated command %s being used on object %s.", cmd.Name, exec))
	}

	regs := d.hookRegisters(st, c)

	if h := cmd.Hooks[HookIgnore]; h != nil && !d.runHook(ctx, st, h, regs) {
		return false
	}

	ctx, span := tracer.Start(ctx, "command.run",
		trace.WithAttributes(
			otelattr.String("command.name", cmd.Name),
			otelattr.String("command.executor", exec.String()),
		),
	)
	defer span.End()

	if h := cmd.Hooks[HookOverride]; h != nil {
		matched := d.runCmdHook(ctx, st, h, c.evaled, regs)
		if !matched && cmd.NOP && c.args != "" {
			matched = d.runCmdHook(ctx, st, h, cmd.Name+" "+c.args, regs)
		}
		if matched {
			span.SetAttributes(otelattr.Bool("command.overridden", true))
			RecordCommandExecution(cmd.Name, StatusOverridden)
			return true
		}
	}

	if c.switchErr != "" {
		if h := cmd.Hooks[HookExtend]; h == nil || !d.runCmdHook(ctx, st, h, c.evaled, regs) {
			d.notify.Notify(ctx, exec, c.switchErr)
		}
		return true
	}

	if h := cmd.Hooks[HookBefore]; h != nil {
		d.runHook(ctx, st, h, regs)
	}

	status := StatusSuccess
	inv := d.invocation(st, c)
	handler := cmd.Handler
	if handler == nil {
		handler = unimplemented
		if u := d.table.FindExact("UNIMPLEMENTED_COMMAND"); u != nil && !u.Disabled && u.Handler != nil {
			handler = u.Handler
		}
	}
	if err := handler(ctx, inv); err != nil {
		status = StatusError
		span.RecordError(err)
		d.notify.Notify(ctx, exec, PlayerMessage(err))
		errutil.Log(ctx, d.logger, slog.LevelWarn, "command handler failed", err, "command", cmd.Name)
	}
	RecordCommandExecution(cmd.Name, status)

	if h := cmd.Hooks[HookAfter]; h != nil {
		d.runHook(ctx, st, h, regs)
	}

	d.logCommand(ctx, st, c)
	return true
}

func unimplemented(ctx context.Context, inv *Invocation) error {
	inv.Notify(ctx, "This command has not been implemented.")
	return nil
}

func (d *Dispatcher) invocation(st *dispatch, c *call) *Invocation {
	return &Invocation{
		ID:         st.id,
		Command:    c.cmd,
		Executor:   st.req.Executor,
		Enactor:    st.req.Enactor,
		Caller:     st.req.Caller,
		Switches:   c.switches,
		Extra:      c.extra,
		Raw:        c.raw,
		Evaled:     c.evaled,
		Args:       c.args,
		Left:       c.p.left.text,
		LeftArgs:   c.p.left.args,
		Right:      c.p.right.text,
		RightArgs:  c.p.right.args,
		RHSPresent: c.p.rhsPresent,
		FromSocket: st.req.FromSocket,
		Depth:      st.req.Depth,
		d:          d,
	}
}

// hookRegisters builds the q-registers hooks see: the raw arguments,
// switches and each parsed argument.
func (d *Dispatcher) hookRegisters(st *dispatch, c *call) map[string]string {
	regs := maps.Clone(st.env.Registers)
	if regs == nil {
		regs = map[string]string{}
	}
	regs["ARGS"] = c.args
	regs["SWITCHES"] = c.extra
	pol := c.cmd.Policy

	if pol.LSArgs {
		setArgRegisters(regs, "LSA", c.p.left.args)
	} else if c.p.left.text != "" {
		regs["LS"] = c.p.left.text
	}
	if !pol.EqSplit {
		return regs
	}
	if c.p.rhsPresent {
		regs["EQUALS"] = "="
	}
	if pol.RSArgs {
		setArgRegisters(regs, "RSA", c.p.right.args)
	} else if c.p.right.text != "" {
		regs["RS"] = c.p.right.text
	}
	return regs
}

// setArgRegisters stores args as PREFIX1..PREFIXn and the index of the
// last non-empty one as PREFIXC.
func setArgRegisters(regs map[string]string, prefix string, args []string) {
	last := 0
	for i, a := range args {
		if a == "" {
			continue
		}
		regs[prefix+strconv.Itoa(i+1)] = a
		last = i + 1
	}
	regs[prefix+"C"] = strconv.Itoa(last)
}

// runHook evaluates a before, after or ignore hook and reports whether
// the result is true. A hook whose attribute is missing counts as true.
func (d *Dispatcher) runHook(ctx context.Context, st *dispatch, h *Hook, regs map[string]string) bool {
	if !d.graph.Good(h.Obj) {
		return true
	}
	if st.req.Depth >= d.hookDepth {
		d.logger.WarnContext(ctx, "hook skipped: queue depth exceeded",
			"object", h.Obj.String(), "attribute", h.Attr, "depth", st.req.Depth)
		return true
	}
	code, ok := d.attrs.AttrValue(h.Obj, h.Attr)
	if !ok {
		return true
	}
	env := &EvalEnv{
		Executor:  h.Obj,
		Caller:    st.req.Executor,
		Enactor:   st.req.Executor,
		Registers: regs,
	}
	out, _ := d.eval.Eval(ctx, env, code, EvalFull, "")
	return ParseBoolean(out)
}

// runCmdHook matches text against the $commands of an override or extend
// hook and queues what matched.
func (d *Dispatcher) runCmdHook(ctx context.Context, st *dispatch, h *Hook, text string, regs map[string]string) bool {
	if !d.graph.Good(h.Obj) {
		return false
	}
	exec := st.req.Executor
	queue := func(m attribute.Match) {
		d.queue.Enqueue(ctx, QueueEntry{
			Executor:  h.Obj,
			Enactor:   exec,
			Caller:    exec,
			Code:      m.Code,
			Args:      m.Captures,
			Registers: maps.Clone(regs),
			Inplace:   h.Inplace,
			Depth:     st.req.Depth + 1,
			Source:    "hook " + h.Obj.String() + "/" + m.Attr.Name(),
		})
	}
	if h.Attr != "" {
		return d.attrs.OneCommandMatch(h.Obj, exec, h.Attr, text, d.passLock, queue)
	}
	n, _ := d.attrs.CommandMatch(h.Obj, exec, text, attribute.MatchOptions{
		CheckLocks: true,
		Locks:      d.passLock,
	}, queue)
	return n > 0
}

// logCommand writes the command log entry for commands that ask for one.
func (d *Dispatcher) logCommand(ctx context.Context, st *dispatch, c *call) {
	cmd := c.cmd
	var text string
	switch cmd.Logging {
	case LogNone:
		return
	case LogName:
		text = cmd.Name
	case LogArgs:
		switch cmd.Redact {
		case RedactBoth:
			text = cmd.Name + " ***=***"
		case RedactRight:
			text = cmd.Name + " " + c.p.left.text + "=***"
		default:
			text = c.evaled
		}
	}
	d.logger.InfoContext(ctx, "command",
		"dispatch_id", st.id.String(),
		"executor", st.req.Executor.String(),
		"name", d.graph.Name(st.req.Executor),
		"location", d.graph.Location(st.req.Executor).String(),
		"command", strings.TrimSpace(text),
	)
}
