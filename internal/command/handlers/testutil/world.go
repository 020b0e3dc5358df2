// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package testutil builds small worlds and dispatchers for handler tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/world"
)

// World is a world loaded from a YAML fixture.
type World struct {
	Graph *world.MemGraph
	Attrs *attribute.Store
	Locks *lock.Registry
	Notes *Notes
}

// NewWorld loads fixture.
func NewWorld(t *testing.T, fixture string) *World {
	t.Helper()

	fix, err := world.LoadFixture(strings.NewReader(fixture))
	require.NoError(t, err)
	g, err := fix.Build()
	require.NoError(t, err)

	attrs := attribute.NewStore(g)
	require.NoError(t, attrs.LoadFixture(fix))
	locks := lock.NewRegistry()
	require.NoError(t, locks.LoadFixture(fix))

	return &World{Graph: g, Attrs: attrs, Locks: locks, Notes: NewNotes()}
}

// Dispatcher finalizes table and returns a dispatcher over the world that
// records every message in w.Notes. Logs are discarded unless opts set a
// logger.
func (w *World) Dispatcher(t *testing.T, table *command.Table, opts ...command.DispatcherOption) *command.Dispatcher {
	t.Helper()

	if table.State() != command.LoadDone {
		require.NoError(t, table.Finalize())
	}
	base := []command.DispatcherOption{
		command.WithLockRegistry(w.Locks),
		command.WithNotifier(w.Notes),
		command.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	d, err := command.NewDispatcher(table, w.Graph, w.Attrs, append(base, opts...)...)
	require.NoError(t, err)
	return d
}

// Notes records messages per target. It is a command.Notifier.
type Notes struct {
	mu    sync.Mutex
	notes map[dbref.Ref][]string
}

// NewNotes returns an empty recorder.
func NewNotes() *Notes {
	return &Notes{notes: map[dbref.Ref][]string{}}
}

// Notify implements command.Notifier.
func (n *Notes) Notify(_ context.Context, target dbref.Ref, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes[target] = append(n.notes[target], msg)
}

// For returns the messages sent to target, oldest first.
func (n *Notes) For(target dbref.Ref) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes[target]...)
}

// Last returns the newest message sent to target, or "".
func (n *Notes) Last(target dbref.Ref) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.notes[target]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// Reset forgets every message.
func (n *Notes) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = map[dbref.Ref][]string{}
}
