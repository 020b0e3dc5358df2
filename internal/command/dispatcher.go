// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/world"
)

var tracer = otel.Tracer("pennmush/command")

// DefaultHookDepth is the queue depth beyond which hooks are skipped.
const DefaultHookDepth = 10

// Outcome is how a dispatch ended.
type Outcome uint8

// Dispatch outcomes.
const (
	// OutcomeRejected means the executor could not run commands.
	OutcomeRejected Outcome = iota
	// OutcomeEmpty means there was no input.
	OutcomeEmpty
	// OutcomeThrottled means socket input arrived too fast.
	OutcomeThrottled
	// OutcomeCommand means a command from the table ran.
	OutcomeCommand
	// OutcomeDenied means a command matched but its lock failed.
	OutcomeDenied
	// OutcomeMatched means one or more $commands were queued.
	OutcomeMatched
	// OutcomeLockFailure means nothing matched but a lock failure
	// message was shown.
	OutcomeLockFailure
	// OutcomeHuh means nothing matched at all.
	OutcomeHuh
)

var outcomeNames = [...]string{"rejected", "empty", "throttled", "command", "denied", "matched", "lock_failure", "huh"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Request is one line of input to dispatch.
type Request struct {
	// Executor runs the command. Enactor caused it to run and Caller is
	// the object whose code invoked it.
	Executor dbref.Ref
	Enactor  dbref.Ref
	Caller   dbref.Ref
	Input    string
	// FromSocket is set for input typed by a connected player.
	FromSocket bool
	// Args and Registers are the %0-%9 values and q-registers in effect.
	Args      []string
	Registers map[string]string
	// Depth is the number of queue hops that led to this input.
	Depth int
}

// NewSocketRequest builds the request for a line typed by a player.
func NewSocketRequest(player dbref.Ref, input string) Request {
	return Request{Executor: player, Enactor: player, Caller: player, Input: input, FromSocket: true}
}

// Dispatcher resolves and runs input from game objects. Dispatch is not
// safe for concurrent use; the game runs one command at a time.
type Dispatcher struct {
	table    *Table
	graph    world.Graph
	attrs    *attribute.Store
	locks    *lock.Registry
	lockEnv  lock.Env
	eval     Evaluator
	notify   Notifier
	queue    Queue
	channels ChannelMatcher
	limiter  *RateLimiter
	logger   *slog.Logger

	hookDepth int
	logAll    bool
	active    int
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithEvaluator sets the softcode evaluator. The default is a
// BasicEvaluator over the dispatcher's graph.
func WithEvaluator(e Evaluator) DispatcherOption {
	return func(d *Dispatcher) { d.eval = e }
}

// WithNotifier sets where messages go. The default logs them at debug
// level.
func WithNotifier(n Notifier) DispatcherOption {
	return func(d *Dispatcher) { d.notify = n }
}

// WithQueue sets the command queue. The default is an ImmediateQueue.
func WithQueue(q Queue) DispatcherOption {
	return func(d *Dispatcher) { d.queue = q }
}

// WithLockRegistry sets the object locks consulted by $command matching.
func WithLockRegistry(r *lock.Registry) DispatcherOption {
	return func(d *Dispatcher) { d.locks = r }
}

// WithChannelMatcher enables the chat token.
func WithChannelMatcher(m ChannelMatcher) DispatcherOption {
	return func(d *Dispatcher) { d.channels = m }
}

// WithRateLimiter limits socket input per player. Wizards are exempt.
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) { d.limiter = rl }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithHookDepth sets the queue depth beyond which hooks are skipped.
func WithHookDepth(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.hookDepth = n
		}
	}
}

// WithLogAllCommands logs every input line, not only those of SUSPECT
// objects.
func WithLogAllCommands(on bool) DispatcherOption {
	return func(d *Dispatcher) { d.logAll = on }
}

// NewDispatcher creates a dispatcher. The table must be finalized.
func NewDispatcher(table *Table, graph world.Graph, attrs *attribute.Store, opts ...DispatcherOption) (*Dispatcher, error) {
	switch {
	case table == nil:
		return nil, oops.Code(CodeNilCollaborator).Errorf("command table is required")
	case graph == nil:
		return nil, oops.Code(CodeNilCollaborator).Errorf("world graph is required")
	case attrs == nil:
		return nil, oops.Code(CodeNilCollaborator).Errorf("attribute store is required")
	case table.State() != LoadDone:
		return nil, oops.Code(CodeNotFinalized).
			With("state", table.State().String()).
			Errorf("command table must be finalized before dispatch")
	}

	d := &Dispatcher{
		table:     table,
		graph:     graph,
		attrs:     attrs,
		logger:    slog.Default(),
		hookDepth: DefaultHookDepth,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.locks == nil {
		d.locks = lock.NewRegistry()
	}
	if d.eval == nil {
		d.eval = NewBasicEvaluator(graph)
	}
	if d.notify == nil {
		d.notify = NotifierFunc(func(ctx context.Context, target dbref.Ref, msg string) {
			d.logger.DebugContext(ctx, "notify", "target", target.String(), "message", msg)
		})
	}
	if d.queue == nil {
		d.queue = NewImmediateQueue(DefaultQueueLimit)
	}
	if iq, ok := d.queue.(*ImmediateQueue); ok {
		iq.Bind(d)
	}
	d.lockEnv = lock.NewEnv(graph, attrs, d.locks)
	return d, nil
}

// Table returns the command table.
func (d *Dispatcher) Table() *Table { return d.table }

// Graph returns the world graph.
func (d *Dispatcher) Graph() world.Graph { return d.graph }

// Attributes returns the attribute store.
func (d *Dispatcher) Attributes() *attribute.Store { return d.attrs }

// Locks returns the object lock registry.
func (d *Dispatcher) Locks() *lock.Registry { return d.locks }

// LockEnv returns the environment locks are evaluated in.
func (d *Dispatcher) LockEnv() lock.Env { return d.lockEnv }

// Evaluator returns the softcode evaluator.
func (d *Dispatcher) Evaluator() Evaluator { return d.eval }

// Queue returns the command queue.
func (d *Dispatcher) Queue() Queue { return d.queue }

// Logger returns the logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }

// Notify sends msg to target.
func (d *Dispatcher) Notify(ctx context.Context, target dbref.Ref, msg string) {
	d.notify.Notify(ctx, target, msg)
}

// passLock evaluates the named lock on thing for actor. Missing locks
// pass.
func (d *Dispatcher) passLock(actor, thing dbref.Ref, name string) bool {
	return d.locks.NamedLock(thing, name).Eval(d.lockEnv, actor, thing)
}

// CanUse reports whether actor passes the lock of an enabled command.
func (d *Dispatcher) CanUse(actor dbref.Ref, cmd *Descriptor) bool {
	return cmd != nil && !cmd.Disabled && cmd.Lock.Eval(d.lockEnv, actor, actor)
}

// checkCommand is CanUse that tells actor why a lock failed. Disabled
// commands fail silently.
func (d *Dispatcher) checkCommand(ctx context.Context, actor dbref.Ref, cmd *Descriptor) bool {
	if cmd == nil || cmd.Disabled {
		return false
	}
	if cmd.Lock.Eval(d.lockEnv, actor, actor) {
		return true
	}
	msg := cmd.RestrictMessage
	if msg == "" {
		msg = "Permission denied."
	}
	d.notify.Notify(ctx, actor, msg)
	return false
}

// dispatch is the state of one Process call.
type dispatch struct {
	id      ulid.ULID
	req     Request
	env     *EvalEnv
	errs    *ErrorObjects
	metrics *MetricsRecorder
}

// Process dispatches one line of input and reports how it ended.
func (d *Dispatcher) Process(ctx context.Context, req Request) Outcome {
	st := &dispatch{
		id:      ulid.Make(),
		req:     req,
		errs:    NewErrorObjects(),
		metrics: NewMetricsRecorder(),
	}
	st.env = &EvalEnv{
		Executor:  req.Executor,
		Caller:    req.Caller,
		Enactor:   req.Enactor,
		Args:      req.Args,
		Registers: maps.Clone(req.Registers),
	}

	ctx, span := tracer.Start(ctx, "command.process",
		trace.WithAttributes(
			otelattr.String("dispatch.id", st.id.String()),
			otelattr.String("dispatch.executor", req.Executor.String()),
			otelattr.Bool("dispatch.from_socket", req.FromSocket),
			otelattr.Int("dispatch.depth", req.Depth),
		),
	)
	d.active++
	defer func() {
		d.active--
		span.SetAttributes(otelattr.String("dispatch.outcome", st.metrics.Outcome().String()))
		span.End()
		st.metrics.Record()
		if d.active == 0 {
			if iq, ok := d.queue.(*ImmediateQueue); ok {
				iq.Drain(ctx)
			}
		}
	}()

	out := d.process(ctx, st)
	st.metrics.SetOutcome(out)
	return out
}

func (d *Dispatcher) process(ctx context.Context, st *dispatch) Outcome {
	g := d.graph
	exec := st.req.Executor

	if !g.Good(exec) {
		if !g.IsGarbage(exec) {
			d.logger.ErrorContext(ctx, "command from bad executor", "executor", exec.String())
		}
		return OutcomeRejected
	}
	if g.Halted(exec) && (g.Type(exec) != world.TypePlayer || !st.req.FromSocket) {
		d.notify.Notify(ctx, g.Owner(exec), fmt.Sprintf("Attempt to execute command by halted object %s", exec))
		return OutcomeRejected
	}
	loc := d.speechLoc(exec)
	if !g.Good(loc) {
		d.notify.Notify(ctx, g.Owner(exec), fmt.Sprintf("Invalid location on command execution: %s(%s)", g.Name(exec), exec))
		d.logger.ErrorContext(ctx, "command attempted in invalid location",
			"executor", exec.String(), "name", g.Name(exec), "location", g.Location(exec).String())
		if g.Mobile(exec) {
			if err := g.MoveTo(ctx, exec, g.PlayerStart()); err != nil {
				d.logger.WarnContext(ctx, "failed to move executor to player start", "executor", exec.String(), "error", err)
			}
			loc = d.speechLoc(exec)
		}
	}

	input := strings.TrimSpace(st.req.Input)
	input = strings.TrimLeft(strings.TrimPrefix(input, string(DebugToken)), " ")
	if input == "" {
		return OutcomeEmpty
	}

	if st.req.FromSocket && d.limiter != nil && !world.Wizard(g, exec) {
		if ok, cooldown := d.limiter.Allow(exec); !ok {
			d.notify.Notify(ctx, exec, fmt.Sprintf("You are sending commands too quickly. Wait %dms.", cooldown))
			return OutcomeThrottled
		}
	}

	filtered := PasswordFilter(input)
	if d.logAll || g.HasFlag(exec, "SUSPECT") {
		d.logger.InfoContext(ctx, "command input",
			"dispatch_id", st.id.String(), "executor", exec.String(), "input", filtered)
	}
	if g.HasFlag(exec, "VERBOSE") {
		d.notify.Notify(ctx, g.Owner(exec), fmt.Sprintf("%s] %s", exec, filtered))
	}

	fallback, out, done := d.parse(ctx, st, input)
	if done {
		return out
	}

	if !g.Gagged(exec) {
		if out, done := d.cascade(ctx, st, loc, fallback); done {
			return out
		}
	}

	if st.errs.Len() > 0 && st.errs.DrainAndRun(func(obj dbref.Ref) bool {
		return d.failCommand(ctx, exec, obj)
	}) {
		return OutcomeLockFailure
	}
	d.genericFailure(ctx, st, fallback)
	return OutcomeHuh
}

// speechLoc is where an object's commands are heard: a room's own
// contents, or the location of anything else.
func (d *Dispatcher) speechLoc(obj dbref.Ref) dbref.Ref {
	if d.graph.Type(obj) == world.TypeRoom {
		return obj
	}
	return d.graph.Location(obj)
}

// PasswordFilter hides passwords in input before it is logged.
func PasswordFilter(input string) string {
	word, rest, _ := strings.Cut(input, " ")
	upper := strings.ToUpper(word)
	switch {
	case strings.HasPrefix(upper, "@PASS"):
		return word + " ***=***"
	case strings.HasPrefix(upper, "@NEWPASS"), strings.HasPrefix(upper, "@PCREATE"):
		name, _, _ := strings.Cut(rest, "=")
		return word + " " + strings.TrimSpace(name) + "=***"
	case strings.EqualFold(word, "connect") || strings.EqualFold(word, "create"):
		name, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
		return word + " " + name + " ***"
	}
	return input
}
