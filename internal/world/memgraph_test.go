// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/pkg/errutil"
)

const testFixture = `
god: 1
master_room: 2
player_start: 0
ancestors:
  thing: 9
objects:
  - {ref: 0, name: Room Zero, type: room}
  - {ref: 1, name: One, type: player, location: 0, flags: [wizard]}
  - {ref: 2, name: Master Room, type: room}
  - {ref: 3, name: Alice, type: player, location: 0}
  - {ref: 4, name: Box, type: thing, location: 0, owner: 3}
  - {ref: 5, name: "North;n;no", type: exit, source: 0, destination: 2}
  - {ref: 6, name: Pebble, type: thing, location: 3, owner: 3}
  - {ref: 9, name: Thing Ancestor, type: thing, location: 2}
`

func buildFixture(t *testing.T) *MemGraph {
	t.Helper()
	f, err := LoadFixture(strings.NewReader(testFixture))
	require.NoError(t, err)
	g, err := f.Build()
	require.NoError(t, err)
	return g
}

func TestFixture_Build(t *testing.T) {
	g := buildFixture(t)

	assert.Equal(t, dbref.Ref(1), g.God())
	assert.Equal(t, dbref.Ref(2), g.MasterRoom())
	assert.Equal(t, []dbref.Ref{1, 3, 4}, g.Contents(0))
	assert.Equal(t, []dbref.Ref{5}, g.Exits(0))
	assert.Equal(t, dbref.Ref(2), g.Location(5))
	assert.Equal(t, dbref.Ref(3), g.Owner(4))
	assert.Equal(t, dbref.Ref(3), g.Owner(3), "players own themselves")
	assert.Equal(t, dbref.Ref(9), AncestorOf(g, 4))
	assert.Equal(t, dbref.Nothing, AncestorOf(g, 0))
	assert.Equal(t, dbref.Nothing, g.Location(0), "rooms have no location")
}

func TestLoadFixture_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("objects:\n  - {ref: 0, type: room, colour: red}\n"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "FIXTURE_INVALID")
}

func TestFixture_Build_UnknownType(t *testing.T) {
	f, err := LoadFixture(strings.NewReader("objects:\n  - {ref: 0, type: widget}\n"))
	require.NoError(t, err)
	_, err = f.Build()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "FIXTURE_INVALID")
}

func TestMemGraph_Add_Duplicate(t *testing.T) {
	g := NewMemGraph()
	require.NoError(t, g.Add(Object{Ref: 0, Type: TypeRoom, Location: dbref.Nothing}))
	err := g.Add(Object{Ref: 0, Type: TypeRoom, Location: dbref.Nothing})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DUPLICATE_OBJECT")
}

func TestMemGraph_Predicates(t *testing.T) {
	g := buildFixture(t)

	assert.True(t, g.Mobile(3))
	assert.True(t, g.Mobile(4))
	assert.False(t, g.Mobile(0))
	assert.False(t, g.Gagged(3))
	g.SetFlag(3, "gagged", true)
	assert.True(t, g.Gagged(3))
	g.SetFlag(4, "GAGGED", true)
	assert.False(t, g.Gagged(4), "only players can be gagged")

	assert.False(t, g.Halted(4))
	g.SetFlag(4, "HALT", true)
	assert.True(t, g.Halted(4))
	assert.True(t, g.Halted(99), "invalid objects count as halted")
}

func TestMemGraph_Controls(t *testing.T) {
	g := buildFixture(t)

	tests := []struct {
		name      string
		who, what dbref.Ref
		want      bool
	}{
		{name: "owner controls thing", who: 3, what: 4, want: true},
		{name: "thing controls sibling", who: 4, what: 6, want: true},
		{name: "stranger does not control", who: 4, what: 0, want: false},
		{name: "wizard controls everything but god", who: 1, what: 4, want: true},
		{name: "mortal cannot control god", who: 3, what: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Controls(tt.who, tt.what))
		})
	}
}

func TestMemGraph_MoveTo(t *testing.T) {
	g := buildFixture(t)
	ctx := context.Background()

	require.NoError(t, g.MoveTo(ctx, 4, 2))
	assert.Equal(t, []dbref.Ref{1, 3}, g.Contents(0))
	assert.Equal(t, []dbref.Ref{9, 4}, g.Contents(2))
	assert.Equal(t, dbref.Ref(2), g.Location(4))

	err := g.MoveTo(ctx, 0, 2)
	errutil.AssertErrorCode(t, err, "INVALID_MOVE")
	err = g.MoveTo(ctx, 4, 5)
	errutil.AssertErrorCode(t, err, "INVALID_DESTINATION")
}

func TestMemGraph_Destroy(t *testing.T) {
	g := buildFixture(t)
	g.Destroy(4)
	assert.False(t, g.Good(4))
	assert.True(t, g.IsGarbage(4))
	assert.Equal(t, []dbref.Ref{1, 3}, g.Contents(0))
}

func TestMemGraph_Touch(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewMemGraph(WithClock(func() time.Time { return now }))
	require.NoError(t, g.Add(Object{Ref: 0, Type: TypeRoom, Location: dbref.Nothing}))
	g.Touch(0)
	assert.Equal(t, now, g.ModTime(0))
}

func TestCheckAlias(t *testing.T) {
	assert.True(t, CheckAlias("n", "North;n;no"))
	assert.True(t, CheckAlias("NORTH", "North;n;no"))
	assert.True(t, CheckAlias(" no ", "North; n ;no"))
	assert.False(t, CheckAlias("nor", "North;n;no"))
	assert.False(t, CheckAlias("", "North;;no"))
}

func TestMatchExit(t *testing.T) {
	g := buildFixture(t)
	assert.Equal(t, dbref.Ref(5), MatchExit(g, 0, "n"))
	assert.Equal(t, dbref.Nothing, MatchExit(g, 0, "south"))
	assert.Equal(t, dbref.Nothing, MatchExit(g, 42, "n"))
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "PLAYER", TypePlayer.String())
	assert.Equal(t, "PLAYER THING", (TypePlayer | TypeThing).String())
	typ, ok := ParseType("exit")
	assert.True(t, ok)
	assert.Equal(t, TypeExit, typ)
	_, ok = ParseType("widget")
	assert.False(t, ok)
}
