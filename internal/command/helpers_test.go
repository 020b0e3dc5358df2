// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/world"
)

// Objects in testWorld.
const (
	lobby    dbref.Ref = 0
	god      dbref.Ref = 1
	master   dbref.Ref = 2
	alice    dbref.Ref = 3
	widget   dbref.Ref = 4
	bag      dbref.Ref = 5
	vault    dbref.Ref = 6
	gagged   dbref.Ref = 7
	north    dbref.Ref = 8
	hall     dbref.Ref = 9
	zmo      dbref.Ref = 10
	booth    dbref.Ref = 11
	guest    dbref.Ref = 12
	hooker   dbref.Ref = 13
	globals  dbref.Ref = 20
	shortcut dbref.Ref = 21
	tent     dbref.Ref = 22
	bob      dbref.Ref = 23
)

const testWorld = `
god: 1
master_room: 2
player_start: 0
objects:
  - {ref: 0, name: Lobby, type: room, zone: 10}
  - {ref: 1, name: One, type: player, location: 0, flags: [WIZARD]}
  - {ref: 2, name: Master Room, type: room}
  - {ref: 3, name: Alice, type: player, location: 0}
  - ref: 4
    name: Widget
    type: thing
    location: 0
    owner: 3
    attributes:
      - {name: PUSH, value: "$push *:think pushed %0"}
      - {name: TWIST, value: "$twist:think twisted"}
  - ref: 5
    name: Bag
    type: thing
    location: 3
    owner: 3
    attributes:
      - {name: SHAKE, value: "$shake:think rattle"}
  - ref: 6
    name: Vault
    type: thing
    location: 0
    attributes:
      - {name: OPEN, value: "$open vault:think opened"}
      - {name: COMMAND_LOCK` + "`" + `FAILURE, value: "The vault is sealed."}
      - {name: COMMAND_LOCK` + "`" + `OFAILURE, value: "rattles the vault."}
    locks:
      Command: "=#1"
  - {ref: 7, name: Mute, type: player, location: 0, flags: [GAGGED]}
  - {ref: 8, name: North;n, type: exit, source: 0, destination: 9}
  - {ref: 9, name: Hall, type: room}
  - ref: 10
    name: Zone Master
    type: thing
    location: 9
    attributes:
      - {name: ZC, value: "$zonecmd:think zoned"}
      - {name: PUSHZ, value: "$push *:think zone push"}
  - ref: 11
    name: Booth
    type: thing
    location: 0
    attributes:
      - {name: EALIAS, value: "booth;bo"}
  - {ref: 12, name: Guest, type: player, location: 0, powers: [GUEST]}
  - ref: 13
    name: Hooks
    type: thing
    location: 9
    attributes:
      - {name: LSCHECK, value: "%q<ls>"}
      - {name: NO, value: "0"}
      - {name: YES, value: "1"}
      - {name: SAYHOOK, value: "$say *:think hooked %0"}
      - {name: SWHOOK, value: "$say/* *:think extended %0 %1"}
  - ref: 20
    name: Global Object
    type: thing
    location: 2
    attributes:
      - {name: G, value: "$+global *:think global %0"}
  - {ref: 21, name: Shortcut;sc, type: exit, source: 2, destination: 9}
  - ref: 22
    name: Tent
    type: thing
    location: 9
    attributes:
      - {name: LALIAS, value: "out;o"}
  - {ref: 23, name: Bob, type: player, location: 22}
`

// testingT is satisfied by *testing.T and GinkgoT().
type testingT interface {
	require.TestingT
	Helper()
}

// harness is a dispatcher over testWorld with recording handlers.
type harness struct {
	graph  *world.MemGraph
	attrs  *attribute.Store
	locks  *lock.Registry
	table  *Table
	d      *Dispatcher
	logBuf *bytes.Buffer

	mu    sync.Mutex
	notes map[dbref.Ref][]string
	calls []*Invocation
}

func (h *harness) record(_ context.Context, inv *Invocation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, inv)
	return nil
}

func (h *harness) think(ctx context.Context, inv *Invocation) error {
	inv.Notify(ctx, inv.Left)
	return h.record(ctx, inv)
}

func (h *harness) huh(ctx context.Context, inv *Invocation) error {
	inv.Notify(ctx, HuhMessage)
	return h.record(ctx, inv)
}

// lastCall returns the most recent invocation, or nil.
func (h *harness) lastCall() *Invocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.calls) == 0 {
		return nil
	}
	return h.calls[len(h.calls)-1]
}

// ran reports whether the handler of the named command was called.
func (h *harness) ran(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, inv := range h.calls {
		if inv.Command.Name == name {
			return true
		}
	}
	return false
}

// callsSnapshot returns the invocations so far, oldest first.
func (h *harness) callsSnapshot() []*Invocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Invocation(nil), h.calls...)
}

// thinkers returns the executors of THINK invocations in the order they
// ran.
func (h *harness) thinkers() []dbref.Ref {
	var out []dbref.Ref
	for _, inv := range h.callsSnapshot() {
		if inv.Command.Name == "THINK" {
			out = append(out, inv.Executor)
		}
	}
	return out
}

// recordingQueue keeps queued entries without running them.
type recordingQueue struct {
	mu      sync.Mutex
	entries []QueueEntry
}

func (q *recordingQueue) Enqueue(_ context.Context, e QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
}

// notesFor returns the messages sent to ref.
func (h *harness) notesFor(ref dbref.Ref) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.notes[ref]...)
}

func (h *harness) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notes = map[dbref.Ref][]string{}
	h.calls = nil
}

// run dispatches socket input from player.
func (h *harness) run(player dbref.Ref, input string) Outcome {
	return h.d.Process(context.Background(), NewSocketRequest(player, input))
}

// testSwitches are the switches the test commands use.
var testSwitches = []string{
	"NOSPACE", "SPOOF", "SILENT", "LIST", "ADD", "ALIAS", "DELETE",
	"INPLACE", "INLINE", "QUIET", "BRIEF",
}

// registerTestCommands fills a table with the commands the tests use.
func (h *harness) registerTestCommands(t *Table) {
	rec := h.record
	t.MustRegister(Spec{Name: "SAY", Switches: "NOEVAL", Handler: rec, NoGagged: true})
	t.MustRegister(Spec{Name: "POSE", Switches: "NOEVAL NOSPACE", Handler: rec, NoGagged: true})
	t.MustRegister(Spec{Name: "SEMIPOSE", Switches: "NOEVAL", Handler: rec, NoGagged: true})
	t.MustRegister(Spec{Name: "@EMIT", Switches: "NOEVAL SPOOF", Handler: rec, NoGagged: true})
	t.MustRegister(Spec{Name: "@FORCE", Switches: "NOEVAL INPLACE INLINE", Handler: rec,
		Policy: ParsePolicy{EqSplit: true, RSBrace: true}, NoGagged: true})
	t.MustRegister(Spec{Name: "@CHAT", Handler: rec, Policy: ParsePolicy{EqSplit: true}, NoGagged: true})
	t.MustRegister(Spec{Name: "GOTO", Handler: rec, Types: world.TypePlayer | world.TypeThing})
	t.MustRegister(Spec{Name: "ENTER", Handler: rec})
	t.MustRegister(Spec{Name: "LEAVE", Handler: rec, Types: world.TypePlayer | world.TypeThing})
	t.MustRegister(Spec{Name: "THINK", Switches: "NOEVAL", Handler: h.think})
	t.MustRegister(Spec{Name: "@SET", Handler: rec, Policy: ParsePolicy{EqSplit: true}, NoGagged: true})
	t.MustRegister(Spec{Name: "@TEL", Switches: "SILENT LIST", Handler: rec,
		Policy: ParsePolicy{EqSplit: true}})
	t.MustRegister(Spec{Name: "@ARGS", Handler: rec,
		Policy: ParsePolicy{EqSplit: true, LSArgs: true, RSArgs: true}})
	t.MustRegister(Spec{Name: "@LOCK", Handler: rec, AnySwitch: true, Policy: ParsePolicy{EqSplit: true}})
	t.MustRegister(Spec{Name: "@WIZONLY", Handler: rec, Flags: "WIZARD"})
	t.MustRegister(Spec{Name: "@PASSWORD", Handler: rec, Types: world.TypePlayer,
		Policy:  ParsePolicy{EqSplit: true, NoParse: true, RSNoParse: true},
		Logging: LogArgs, Redact: RedactBoth, NoGuest: true})
	t.MustRegister(Spec{Name: "ATTRIB_SET", Handler: rec, Internal: true,
		Policy: ParsePolicy{EqSplit: true}, NoGagged: true})
	t.MustRegister(Spec{Name: "HUH_COMMAND", Handler: h.huh, Internal: true, NOP: true,
		Policy: ParsePolicy{NoParse: true}})
	t.MustRegister(Spec{Name: "WARN_ON_MISSING", Handler: rec, Internal: true, NOP: true,
		Policy: ParsePolicy{NoParse: true}})
}

// newHarness builds the world and a finalized table. Options are passed to
// the dispatcher.
func newHarness(t testingT, opts ...DispatcherOption) *harness {
	t.Helper()

	fix, err := world.LoadFixture(strings.NewReader(testWorld))
	require.NoError(t, err)
	g, err := fix.Build()
	require.NoError(t, err)

	attrs := attribute.NewStore(g)
	require.NoError(t, attrs.LoadFixture(fix))
	locks := lock.NewRegistry()
	require.NoError(t, locks.LoadFixture(fix))

	h := &harness{
		graph:  g,
		attrs:  attrs,
		locks:  locks,
		logBuf: &bytes.Buffer{},
		notes:  map[dbref.Ref][]string{},
	}

	table := NewTable(NewSwitches(testSwitches), WithGod(god))
	h.registerTestCommands(table)
	require.NoError(t, table.Finalize())
	h.table = table

	logger := slog.New(slog.NewJSONHandler(h.logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := []DispatcherOption{
		WithLockRegistry(locks),
		WithLogger(logger),
		WithNotifier(NotifierFunc(func(_ context.Context, target dbref.Ref, msg string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notes[target] = append(h.notes[target], msg)
		})),
	}
	d, err := NewDispatcher(table, g, attrs, append(base, opts...)...)
	require.NoError(t, err)
	h.d = d
	return h
}

// channelSet is a ChannelMatcher over a fixed list of channel names.
type channelSet []string

func (c channelSet) MatchChannel(_ dbref.Ref, prefix string) bool {
	for _, name := range c {
		if strings.HasPrefix(strings.ToUpper(name), strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}
