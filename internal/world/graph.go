// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package world defines the object and location graph consumed by the
// command core, plus an in-memory implementation used by the CLI and tests.
package world

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/dbref"
)

// Type is an object type. Values are distinct bits so that a set of types
// can be expressed as a Type mask.
type Type uint8

// Object types.
const (
	TypeRoom Type = 1 << iota
	TypeThing
	TypeExit
	TypePlayer
	TypeGarbage
)

// TypeAny matches every live object type.
const TypeAny = TypeRoom | TypeThing | TypeExit | TypePlayer

var typeNames = []struct {
	t    Type
	name string
}{
	{TypePlayer, "PLAYER"},
	{TypeThing, "THING"},
	{TypeExit, "EXIT"},
	{TypeRoom, "ROOM"},
	{TypeGarbage, "GARBAGE"},
}

// String returns the upper-case name of a single type, or a space separated
// list for a mask.
func (t Type) String() string {
	var names []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, " ")
}

// Has reports whether every bit of o is set in t.
func (t Type) Has(o Type) bool {
	return o != 0 && t&o == o
}

// ParseType converts a type name (case-insensitive) to a Type.
func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, tn := range typeNames {
		if tn.name == s {
			return tn.t, true
		}
	}
	return 0, false
}

// Graph is the object database as seen by the command core. The core never
// mutates the graph except through MoveTo and Touch.
type Graph interface {
	// Good reports whether ref is in range and not garbage.
	Good(ref dbref.Ref) bool
	IsGarbage(ref dbref.Ref) bool
	Type(ref dbref.Ref) Type
	Name(ref dbref.Ref) string

	Location(ref dbref.Ref) dbref.Ref
	// Contents returns ref's contents in link order.
	Contents(ref dbref.Ref) []dbref.Ref
	// Exits returns the exits leading out of a room, in link order.
	Exits(ref dbref.Ref) []dbref.Ref
	Zone(ref dbref.Ref) dbref.Ref
	Owner(ref dbref.Ref) dbref.Ref
	Parent(ref dbref.Ref) dbref.Ref
	// Ancestor returns the configured ancestor for objects of type t, or
	// dbref.Nothing.
	Ancestor(t Type) dbref.Ref

	HasFlag(ref dbref.Ref, flag string) bool
	HasPower(ref dbref.Ref, power string) bool
	Halted(ref dbref.Ref) bool
	Gagged(ref dbref.Ref) bool
	Mobile(ref dbref.Ref) bool

	Controls(who, what dbref.Ref) bool
	CanLook(who, what dbref.Ref) bool

	MoveTo(ctx context.Context, what, where dbref.Ref) error
	// Touch records a modification of ref's attributes.
	Touch(ref dbref.Ref)

	MasterRoom() dbref.Ref
	PlayerStart() dbref.Ref
	God() dbref.Ref
}

// IsGod reports whether ref is the god object.
func IsGod(g Graph, ref dbref.Ref) bool {
	return ref != dbref.Nothing && ref == g.God()
}

// Wizard reports whether ref has wizard privileges.
func Wizard(g Graph, ref dbref.Ref) bool {
	return IsGod(g, ref) || g.HasFlag(ref, "WIZARD")
}

// Royalty reports whether ref has royalty privileges.
func Royalty(g Graph, ref dbref.Ref) bool {
	return Wizard(g, ref) || g.HasFlag(ref, "ROYALTY")
}

// AncestorOf returns the ancestor object that applies to ref.
func AncestorOf(g Graph, ref dbref.Ref) dbref.Ref {
	if g.HasFlag(ref, "ORPHAN") {
		return dbref.Nothing
	}
	t := g.Type(ref)
	if t == 0 || t == TypeGarbage {
		return dbref.Nothing
	}
	return g.Ancestor(t)
}

// CheckAlias reports whether name matches one of the ';'-separated entries
// in list, ignoring case and surrounding spaces.
func CheckAlias(name, list string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, alias := range strings.Split(list, ";") {
		if strings.EqualFold(strings.TrimSpace(alias), name) {
			return true
		}
	}
	return false
}

// MatchExit finds an exit out of room whose name list matches name.
func MatchExit(g Graph, room dbref.Ref, name string) dbref.Ref {
	if !g.Good(room) {
		return dbref.Nothing
	}
	for _, exit := range g.Exits(room) {
		if g.Good(exit) && CheckAlias(name, g.Name(exit)) {
			return exit
		}
	}
	return dbref.Nothing
}
