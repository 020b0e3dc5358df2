// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"github.com/holomush/pennmush/internal/dbref"
)

const (
	errObjectsInitial = 5
	errObjectsMax     = 50
)

// ErrorObjects collects the objects whose command or use lock failed while
// input was matched against $commands, so that their failure messages can
// be shown if nothing else matched. It holds at most 50 objects; later
// ones are dropped.
type ErrorObjects struct {
	refs []dbref.Ref
}

// NewErrorObjects creates an empty collector.
func NewErrorObjects() *ErrorObjects {
	return &ErrorObjects{refs: make([]dbref.Ref, 0, errObjectsInitial)}
}

// Add records obj. It reports whether obj was kept.
func (e *ErrorObjects) Add(obj dbref.Ref) bool {
	if len(e.refs) >= errObjectsMax {
		return false
	}
	if len(e.refs) == cap(e.refs) {
		grown := make([]dbref.Ref, len(e.refs), cap(e.refs)+1)
		copy(grown, e.refs)
		e.refs = grown
	}
	e.refs = append(e.refs, obj)
	return true
}

// Len returns the number of objects recorded.
func (e *ErrorObjects) Len() int { return len(e.refs) }

// Objects returns the recorded objects in insertion order.
func (e *ErrorObjects) Objects() []dbref.Ref {
	return append([]dbref.Ref(nil), e.refs...)
}

// DrainAndRun calls fn for each recorded object in insertion order and
// empties the collector. It reports whether any call returned true.
func (e *ErrorObjects) DrainAndRun(fn func(dbref.Ref) bool) bool {
	refs := e.refs
	e.refs = make([]dbref.Ref, 0, errObjectsInitial)
	fired := false
	for _, obj := range refs {
		if fn(obj) {
			fired = true
		}
	}
	return fired
}
