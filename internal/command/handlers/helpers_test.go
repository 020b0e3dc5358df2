// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/command/handlers/testutil"
	"github.com/holomush/pennmush/internal/dbref"
)

// Objects in lobbyWorld.
const (
	lobby    dbref.Ref = 0
	god      dbref.Ref = 1
	master   dbref.Ref = 2
	alice    dbref.Ref = 3
	widget   dbref.Ref = 4
	bob      dbref.Ref = 5
	box      dbref.Ref = 6
	hall     dbref.Ref = 7
	north    dbref.Ref = 8
	south    dbref.Ref = 9
	gate     dbref.Ref = 10
	safe     dbref.Ref = 11
	shadow   dbref.Ref = 12
	shortcut dbref.Ref = 13
	mute     dbref.Ref = 14
)

const lobbyWorld = `
god: 1
master_room: 2
player_start: 0
objects:
  - ref: 0
    name: Lobby
    type: room
    attributes:
      - {name: DESCRIBE, value: "A bright lobby."}
  - {ref: 1, name: One, type: player, location: 0, flags: [WIZARD]}
  - {ref: 2, name: Master Room, type: room}
  - {ref: 3, name: Alice, type: player, location: 0}
  - ref: 4
    name: Widget;wid
    type: thing
    location: 0
    owner: 3
    attributes:
      - {name: DESCRIBE, value: "A widget, seen by %n."}
      - {name: TWIST, value: "$twist:think twisted"}
      - {name: SPIN, value: "$spin *:think spun %0"}
  - {ref: 5, name: Bob, type: player, location: 0}
  - {ref: 6, name: Box, type: thing, location: 0, flags: [ENTER_OK]}
  - {ref: 7, name: Hall, type: room}
  - {ref: 8, name: North;n, type: exit, source: 0, destination: 7}
  - {ref: 9, name: South;s, type: exit, source: 7, destination: 0}
  - ref: 10
    name: Gate
    type: exit
    source: 0
    destination: 7
    attributes:
      - {name: FAILURE, value: "The gate is shut."}
    locks:
      Basic: "=#1"
  - ref: 11
    name: Safe
    type: thing
    location: 0
    attributes:
      - {name: EFAIL, value: "It is locked."}
  - {ref: 12, name: Shadow, type: thing, location: 0, flags: [DARK]}
  - {ref: 13, name: Shortcut;sc, type: exit, source: 2, destination: 7}
  - {ref: 14, name: Mute, type: player, location: 7, flags: [GAGGED]}
`

// fakeRecorder keeps recorded customizations in memory.
type fakeRecorder struct {
	mu  sync.Mutex
	got []command.Customization
	err error
}

func (r *fakeRecorder) RecordCustomization(_ context.Context, c command.Customization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, c)
	return r.err
}

func (r *fakeRecorder) recorded() []command.Customization {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]command.Customization(nil), r.got...)
}

// fixture is a dispatcher with the builtin commands over lobbyWorld.
type fixture struct {
	*testutil.World
	table *command.Table
	d     *command.Dispatcher
}

func newFixture(t *testing.T, opts []Option, dopts ...command.DispatcherOption) *fixture {
	t.Helper()
	return newFixtureWith(t, &fixture{World: testutil.NewWorld(t, lobbyWorld)}, opts, dopts...)
}

// newFixtureWith builds a new table and dispatcher over the world of base.
func newFixtureWith(t *testing.T, base *fixture, opts []Option, dopts ...command.DispatcherOption) *fixture {
	t.Helper()
	table := NewTable([]command.TableOption{command.WithGod(god)}, opts...)
	return &fixture{World: base.World, table: table, d: base.World.Dispatcher(t, table, dopts...)}
}

// run dispatches input typed by who.
func (f *fixture) run(who dbref.Ref, input string) command.Outcome {
	return f.d.Process(context.Background(), command.NewSocketRequest(who, input))
}
