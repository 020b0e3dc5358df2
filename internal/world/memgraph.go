// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
)

// Object is a node in a MemGraph.
type Object struct {
	Ref  dbref.Ref
	Name string
	Type Type
	// Location is the container, or the destination for exits.
	Location dbref.Ref
	// Source is the room an exit leads out of. Unused for other types.
	Source   dbref.Ref
	Zone     dbref.Ref
	Owner    dbref.Ref
	Parent   dbref.Ref
	Flags    []string
	Powers   []string
	Modified time.Time
}

type node struct {
	Object
	flags  map[string]struct{}
	powers map[string]struct{}
}

// MemGraph is an in-memory Graph. It is safe for concurrent use.
type MemGraph struct {
	mu        sync.RWMutex
	objects   map[dbref.Ref]*node
	contents  map[dbref.Ref][]dbref.Ref
	exits     map[dbref.Ref][]dbref.Ref
	ancestors map[Type]dbref.Ref
	god       dbref.Ref
	master    dbref.Ref
	start     dbref.Ref
	now       func() time.Time
}

// MemGraphOption configures a MemGraph.
type MemGraphOption func(*MemGraph)

// WithClock overrides the time source used by Touch.
func WithClock(now func() time.Time) MemGraphOption {
	return func(g *MemGraph) {
		g.now = now
	}
}

// NewMemGraph creates an empty graph. God defaults to #1, the master room to
// #2 and the player start room to #0.
func NewMemGraph(opts ...MemGraphOption) *MemGraph {
	g := &MemGraph{
		objects:   make(map[dbref.Ref]*node),
		contents:  make(map[dbref.Ref][]dbref.Ref),
		exits:     make(map[dbref.Ref][]dbref.Ref),
		ancestors: make(map[Type]dbref.Ref),
		god:       1,
		master:    2,
		start:     0,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add inserts an object, appending it to its container's contents (or its
// source room's exits).
func (g *MemGraph) Add(obj Object) error {
	if obj.Ref < 0 {
		return oops.Code("INVALID_OBJECT").With("ref", obj.Ref).Errorf("object reference must be non-negative")
	}
	if obj.Type == 0 {
		return oops.Code("INVALID_OBJECT").With("ref", obj.Ref).Errorf("object type is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.objects[obj.Ref]; exists {
		return oops.Code("DUPLICATE_OBJECT").With("ref", obj.Ref).Errorf("object %s already exists", obj.Ref)
	}
	n := &node{Object: obj, flags: map[string]struct{}{}, powers: map[string]struct{}{}}
	for _, f := range obj.Flags {
		n.flags[strings.ToUpper(f)] = struct{}{}
	}
	for _, p := range obj.Powers {
		n.powers[strings.ToUpper(p)] = struct{}{}
	}
	if n.Type == TypePlayer {
		n.Owner = n.Ref
	}
	g.objects[obj.Ref] = n

	switch obj.Type {
	case TypeExit:
		if obj.Source != dbref.Nothing {
			g.exits[obj.Source] = append(g.exits[obj.Source], obj.Ref)
		}
	case TypeRoom:
	default:
		if obj.Location != dbref.Nothing {
			g.contents[obj.Location] = append(g.contents[obj.Location], obj.Ref)
		}
	}
	return nil
}

// Object returns a copy of the object at ref.
func (g *MemGraph) Object(ref dbref.Ref) (Object, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.objects[ref]
	if !ok {
		return Object{}, false
	}
	obj := n.Object
	obj.Flags = sortedKeys(n.flags)
	obj.Powers = sortedKeys(n.powers)
	return obj, true
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetFlag sets or clears a flag on ref.
func (g *MemGraph) SetFlag(ref dbref.Ref, flag string, on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.objects[ref]; ok {
		if on {
			n.flags[strings.ToUpper(flag)] = struct{}{}
		} else {
			delete(n.flags, strings.ToUpper(flag))
		}
	}
}

// SetPower grants or revokes a power on ref.
func (g *MemGraph) SetPower(ref dbref.Ref, power string, on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.objects[ref]; ok {
		if on {
			n.powers[strings.ToUpper(power)] = struct{}{}
		} else {
			delete(n.powers, strings.ToUpper(power))
		}
	}
}

// SetParent changes ref's parent.
func (g *MemGraph) SetParent(ref, parent dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.objects[ref]; ok {
		n.Parent = parent
	}
}

// SetZone changes ref's zone.
func (g *MemGraph) SetZone(ref, zone dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.objects[ref]; ok {
		n.Zone = zone
	}
}

// SetGod sets the god object.
func (g *MemGraph) SetGod(ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.god = ref
}

// SetMasterRoom sets the master room.
func (g *MemGraph) SetMasterRoom(ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.master = ref
}

// SetPlayerStart sets the default room for relocated objects.
func (g *MemGraph) SetPlayerStart(ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.start = ref
}

// SetAncestor sets the ancestor for objects of type t.
func (g *MemGraph) SetAncestor(t Type, ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ancestors[t] = ref
}

// Destroy turns ref into garbage and unlinks it from its container.
func (g *MemGraph) Destroy(ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.objects[ref]
	if !ok {
		return
	}
	if n.Type == TypeExit {
		g.exits[n.Source] = slices.DeleteFunc(g.exits[n.Source], func(r dbref.Ref) bool { return r == ref })
	} else {
		g.contents[n.Location] = slices.DeleteFunc(g.contents[n.Location], func(r dbref.Ref) bool { return r == ref })
	}
	n.Type = TypeGarbage
	n.Location = dbref.Nothing
}

// ModTime returns the last modification time of ref.
func (g *MemGraph) ModTime(ref dbref.Ref) time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.objects[ref]; ok {
		return n.Modified
	}
	return time.Time{}
}

func (g *MemGraph) get(ref dbref.Ref) *node {
	return g.objects[ref]
}

// Good implements Graph.
func (g *MemGraph) Good(ref dbref.Ref) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.get(ref)
	return n != nil && n.Type != TypeGarbage
}

// IsGarbage implements Graph.
func (g *MemGraph) IsGarbage(ref dbref.Ref) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := g.get(ref)
	return n != nil && n.Type == TypeGarbage
}

// Type implements Graph.
func (g *MemGraph) Type(ref dbref.Ref) Type {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		return n.Type
	}
	return 0
}

// Name implements Graph.
func (g *MemGraph) Name(ref dbref.Ref) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		return n.Name
	}
	return ""
}

// Location implements Graph.
func (g *MemGraph) Location(ref dbref.Ref) dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		if n.Type == TypeRoom {
			return dbref.Nothing
		}
		return n.Location
	}
	return dbref.Nothing
}

// Contents implements Graph.
func (g *MemGraph) Contents(ref dbref.Ref) []dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.contents[ref])
}

// Exits implements Graph.
func (g *MemGraph) Exits(ref dbref.Ref) []dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.exits[ref])
}

// Zone implements Graph.
func (g *MemGraph) Zone(ref dbref.Ref) dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		return n.Zone
	}
	return dbref.Nothing
}

// Owner implements Graph.
func (g *MemGraph) Owner(ref dbref.Ref) dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		return n.Owner
	}
	return dbref.Nothing
}

// Parent implements Graph.
func (g *MemGraph) Parent(ref dbref.Ref) dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		return n.Parent
	}
	return dbref.Nothing
}

// Ancestor implements Graph.
func (g *MemGraph) Ancestor(t Type) dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if ref, ok := g.ancestors[t]; ok {
		return ref
	}
	return dbref.Nothing
}

// HasFlag implements Graph.
func (g *MemGraph) HasFlag(ref dbref.Ref, flag string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		_, ok := n.flags[strings.ToUpper(flag)]
		return ok
	}
	return false
}

// HasPower implements Graph.
func (g *MemGraph) HasPower(ref dbref.Ref, power string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n := g.get(ref); n != nil {
		_, ok := n.powers[strings.ToUpper(power)]
		return ok
	}
	return false
}

// Halted implements Graph.
func (g *MemGraph) Halted(ref dbref.Ref) bool {
	return !g.Good(ref) || g.HasFlag(ref, "HALT")
}

// Gagged implements Graph. Only players can be gagged.
func (g *MemGraph) Gagged(ref dbref.Ref) bool {
	return g.Type(ref) == TypePlayer && g.HasFlag(ref, "GAGGED")
}

// Mobile implements Graph.
func (g *MemGraph) Mobile(ref dbref.Ref) bool {
	t := g.Type(ref)
	return t == TypePlayer || t == TypeThing
}

// Controls implements Graph.
func (g *MemGraph) Controls(who, what dbref.Ref) bool {
	if !g.Good(who) || !g.Good(what) {
		return false
	}
	if IsGod(g, who) {
		return true
	}
	if IsGod(g, what) {
		return false
	}
	if Wizard(g, who) {
		return true
	}
	if Wizard(g, what) {
		return false
	}
	return g.Owner(who) == g.Owner(what)
}

// CanLook implements Graph.
func (g *MemGraph) CanLook(who, what dbref.Ref) bool {
	if !g.Good(who) || !g.Good(what) {
		return false
	}
	whoLoc := g.Location(who)
	whatLoc := g.Location(what)
	return who == what || whoLoc == whatLoc || whatLoc == who || whoLoc == what || g.Controls(who, what)
}

// MoveTo implements Graph.
func (g *MemGraph) MoveTo(_ context.Context, what, where dbref.Ref) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.get(what)
	if n == nil || n.Type == TypeGarbage {
		return oops.Code("INVALID_OBJECT").With("ref", what).Errorf("cannot move invalid object")
	}
	if n.Type == TypeRoom || n.Type == TypeExit {
		return oops.Code("INVALID_MOVE").With("ref", what).Errorf("%s objects cannot be moved", n.Type)
	}
	dest := g.get(where)
	if dest == nil || dest.Type == TypeGarbage || dest.Type == TypeExit {
		return oops.Code("INVALID_DESTINATION").With("ref", what).With("destination", where).Errorf("invalid destination")
	}
	old := n.Location
	g.contents[old] = slices.DeleteFunc(g.contents[old], func(r dbref.Ref) bool { return r == what })
	g.contents[where] = append(g.contents[where], what)
	n.Location = where
	return nil
}

// Touch implements Graph.
func (g *MemGraph) Touch(ref dbref.Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.get(ref); n != nil {
		n.Modified = g.now()
	}
}

// MasterRoom implements Graph.
func (g *MemGraph) MasterRoom() dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.master
}

// PlayerStart implements Graph.
func (g *MemGraph) PlayerStart() dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.start
}

// God implements Graph.
func (g *MemGraph) God() dbref.Ref {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.god
}

var _ Graph = (*MemGraph)(nil)
