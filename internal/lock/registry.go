// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lock

import (
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// Registry holds the named locks set on objects. Lock names are case
// insensitive. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	locks map[dbref.Ref]map[string]*Lock
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[dbref.Ref]map[string]*Lock)}
}

// Set stores a lock on obj. A nil or always-true lock removes it.
func (r *Registry) Set(obj dbref.Ref, name string, l *Lock) {
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.IsTrue() {
		delete(r.locks[obj], key)
		return
	}
	m := r.locks[obj]
	if m == nil {
		m = make(map[string]*Lock)
		r.locks[obj] = m
	}
	m[key] = l
}

// NamedLock returns the lock called name on obj, or nil.
func (r *Registry) NamedLock(obj dbref.Ref, name string) *Lock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locks[obj][strings.ToLower(name)]
}

// Clear removes every lock on obj.
func (r *Registry) Clear(obj dbref.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, obj)
}

// LoadFixture parses and stores the locks listed in a world fixture.
func (r *Registry) LoadFixture(f *world.Fixture) error {
	for _, of := range f.Objects {
		for name, text := range of.Locks {
			l, err := Parse(text)
			if err != nil {
				return oops.Code("FIXTURE_INVALID").
					With("ref", of.Ref).
					With("lock", name).
					With("cause", err.Error()).
					Errorf("object %s: lock %s: %v", of.Ref, name, err)
			}
			r.Set(of.Ref, name, l)
		}
	}
	return nil
}

// AttrSource supplies attribute values to lock evaluation.
type AttrSource interface {
	AttrValue(obj dbref.Ref, name string) (string, bool)
}

type env struct {
	world.Graph
	attrs AttrSource
	locks *Registry
}

func (e env) AttrValue(obj dbref.Ref, name string) (string, bool) {
	if e.attrs == nil {
		return "", false
	}
	return e.attrs.AttrValue(obj, name)
}

func (e env) NamedLock(obj dbref.Ref, name string) *Lock {
	if e.locks == nil {
		return nil
	}
	return e.locks.NamedLock(obj, name)
}

// NewEnv combines a graph, an attribute source and a lock registry into an
// evaluation environment. attrs and locks may be nil.
func NewEnv(g world.Graph, attrs AttrSource, locks *Registry) Env {
	return env{Graph: g, attrs: attrs, locks: locks}
}
