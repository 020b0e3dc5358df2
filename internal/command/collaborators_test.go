// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommands(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"single", "think hi", []string{"think hi"}},
		{"several", "think a; think b ;think c", []string{"think a", "think b", "think c"}},
		{"braces protect", "@switch x={think a;think b};think c", []string{"@switch x={think a;think b}", "think c"}},
		{"brackets protect", "think [iter(a;b,##)];pose", []string{"think [iter(a;b,##)]", "pose"}},
		{"escapes protect", `think a\;b;pose`, []string{`think a\;b`, "pose"}},
		{"empty pieces dropped", ";;think a;; ", []string{"think a"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCommands(tt.code))
		})
	}
}

func TestImmediateQueue_RunsQueuedCodeAfterTheCommand(t *testing.T) {
	h := newHarness(t)

	h.d.Queue().Enqueue(context.Background(), QueueEntry{
		Executor: widget, Enactor: alice, Caller: alice,
		Code: "think one; think %0", Args: []string{"two"}, Source: "test",
	})
	assert.Equal(t, []string{"one", "two"}, h.notesFor(widget))
}

func TestImmediateQueue_InplaceRunsAtOnce(t *testing.T) {
	h := newHarness(t)
	q, ok := h.d.Queue().(*ImmediateQueue)
	require.True(t, ok)

	// Simulate a dispatch in progress: normal entries wait, inplace ones
	// do not.
	h.d.active++
	q.Enqueue(context.Background(), QueueEntry{Executor: widget, Code: "think later"})
	q.Enqueue(context.Background(), QueueEntry{Executor: widget, Code: "think now", Inplace: true})
	assert.Equal(t, []string{"now"}, h.notesFor(widget))
	assert.Equal(t, 1, q.Len())

	h.d.active--
	q.Drain(context.Background())
	assert.Equal(t, []string{"now", "later"}, h.notesFor(widget))
	assert.Equal(t, 0, q.Len())
}

func TestImmediateQueue_Limit(t *testing.T) {
	q := NewImmediateQueue(2)
	h := newHarness(t, WithQueue(q))

	h.d.active++
	for range 4 {
		q.Enqueue(context.Background(), QueueEntry{Executor: widget, Code: "think tick"})
	}
	h.d.active--
	q.Drain(context.Background())

	assert.Len(t, h.notesFor(widget), 2)
	assert.Equal(t, 0, q.Len())
	assert.Contains(t, h.logBuf.String(), "queue limit reached")
}

func TestImmediateQueue_UnboundDropsEntries(t *testing.T) {
	q := NewImmediateQueue(0)
	q.Enqueue(context.Background(), QueueEntry{Executor: widget, Code: "think lost"})
	assert.Equal(t, 0, q.Len())
}
