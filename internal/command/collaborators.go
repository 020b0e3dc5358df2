// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/holomush/pennmush/internal/dbref"
)

// Notifier delivers a message to an object.
type Notifier interface {
	Notify(ctx context.Context, target dbref.Ref, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, target dbref.Ref, msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, target dbref.Ref, msg string) {
	f(ctx, target, msg)
}

// QueueEntry is softcode waiting to run as commands.
type QueueEntry struct {
	Executor dbref.Ref
	Enactor  dbref.Ref
	Caller   dbref.Ref
	// Code is a ';' separated list of commands.
	Code      string
	Args      []string
	Registers map[string]string
	// Inplace entries run immediately, before the caller continues.
	Inplace bool
	Depth   int
	// Source names what queued the entry, for logs.
	Source string
}

// Queue accepts softcode for later execution.
type Queue interface {
	Enqueue(ctx context.Context, e QueueEntry)
}

// ChannelMatcher resolves the chat token. It reports whether prefix names
// a channel actor can speak on.
type ChannelMatcher interface {
	MatchChannel(actor dbref.Ref, prefix string) bool
}

// DefaultQueueLimit bounds the number of entries one drain of an
// ImmediateQueue runs.
const DefaultQueueLimit = 1000

// ImmediateQueue runs queued code through a Dispatcher as soon as the
// outermost dispatch finishes. Entries queued while draining run after the
// ones already waiting, in order. Inplace entries run at once. Each queued
// command is dispatched with Process.
type ImmediateQueue struct {
	d        *Dispatcher
	pending  []QueueEntry
	draining bool
	limit    int
	logger   *slog.Logger
}

// NewImmediateQueue creates a queue. Attach it to a dispatcher with Bind.
func NewImmediateQueue(limit int) *ImmediateQueue {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &ImmediateQueue{limit: limit, logger: slog.Default()}
}

// Bind sets the dispatcher entries run through.
func (q *ImmediateQueue) Bind(d *Dispatcher) {
	q.d = d
	q.logger = d.logger
}

// Len returns the number of waiting entries.
func (q *ImmediateQueue) Len() int { return len(q.pending) }

// Enqueue implements Queue.
func (q *ImmediateQueue) Enqueue(ctx context.Context, e QueueEntry) {
	if q.d == nil {
		q.logger.WarnContext(ctx, "queue entry dropped: no dispatcher bound", "source", e.Source)
		return
	}
	if e.Inplace {
		q.run(ctx, e)
		return
	}
	q.pending = append(q.pending, e)
	if q.d.active == 0 {
		q.Drain(ctx)
	}
}

// Drain runs waiting entries, including ones they queue, until none are
// left or the limit is reached. Dispatchers drain when their outermost
// dispatch returns.
func (q *ImmediateQueue) Drain(ctx context.Context) {
	if q.draining || q.d == nil {
		return
	}
	q.draining = true
	defer func() { q.draining = false }()

	ran := 0
	for len(q.pending) > 0 {
		if ran >= q.limit {
			q.logger.WarnContext(ctx, "queue limit reached, dropping entries",
				"dropped", len(q.pending), "limit", q.limit)
			q.pending = nil
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.run(ctx, next)
		ran++
	}
}

func (q *ImmediateQueue) run(ctx context.Context, e QueueEntry) {
	for _, cmd := range SplitCommands(e.Code) {
		q.d.Process(ctx, Request{
			Executor:  e.Executor,
			Enactor:   e.Enactor,
			Caller:    e.Caller,
			Input:     cmd,
			Args:      e.Args,
			Registers: e.Registers,
			Depth:     e.Depth,
		})
	}
}

// SplitCommands splits softcode on ';' outside braces and brackets.
// Escaped characters are kept.
func SplitCommands(code string) []string {
	var out []string
	braces, brackets := 0, 0
	start := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '\\':
			i++
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '[':
			brackets++
		case ']':
			if brackets > 0 {
				brackets--
			}
		case ';':
			if braces == 0 && brackets == 0 {
				if s := strings.TrimSpace(code[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if start < len(code) {
		if s := strings.TrimSpace(code[start:]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
