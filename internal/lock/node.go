// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lock

import (
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/pattern"
	"github.com/holomush/pennmush/internal/world"
)

type node interface {
	eval(env Env, actor, target dbref.Ref, depth int) bool
	String() string
	clone() node
}

type constNode bool

func (c constNode) eval(Env, dbref.Ref, dbref.Ref, int) bool { return bool(c) }
func (c constNode) clone() node                               { return c }
func (c constNode) String() string {
	if c {
		return "#TRUE"
	}
	return "#FALSE"
}

type notNode struct{ inner node }

func (n notNode) eval(env Env, actor, target dbref.Ref, depth int) bool {
	return !n.inner.eval(env, actor, target, depth)
}

func (n notNode) clone() node { return notNode{n.inner.clone()} }

func (n notNode) String() string {
	switch n.inner.(type) {
	case andNode, orNode:
		return "!(" + n.inner.String() + ")"
	}
	return "!" + n.inner.String()
}

type andNode []node

func (a andNode) eval(env Env, actor, target dbref.Ref, depth int) bool {
	for _, n := range a {
		if !n.eval(env, actor, target, depth) {
			return false
		}
	}
	return true
}

func (a andNode) clone() node {
	out := make(andNode, len(a))
	for i, n := range a {
		out[i] = n.clone()
	}
	return out
}

func (a andNode) String() string {
	parts := make([]string, len(a))
	for i, n := range a {
		if _, ok := n.(orNode); ok {
			parts[i] = "(" + n.String() + ")"
		} else {
			parts[i] = n.String()
		}
	}
	return strings.Join(parts, "&")
}

type orNode []node

func (o orNode) eval(env Env, actor, target dbref.Ref, depth int) bool {
	for _, n := range o {
		if n.eval(env, actor, target, depth) {
			return true
		}
	}
	return false
}

func (o orNode) clone() node {
	out := make(orNode, len(o))
	for i, n := range o {
		out[i] = n.clone()
	}
	return out
}

func (o orNode) String() string {
	parts := make([]string, len(o))
	for i, n := range o {
		parts[i] = n.String()
	}
	return strings.Join(parts, "|")
}

type atomKind uint8

const (
	atomRef atomKind = iota
	atomIs
	atomCarries
	atomOwner
	atomIndirect
	atomFlag
	atomPower
	atomType
	atomName
	atomAttr
)

type atomNode struct {
	kind    atomKind
	ref     dbref.Ref
	name    string
	pattern string
	typ     world.Type
}

func (a atomNode) clone() node { return a }

func (a atomNode) String() string {
	switch a.kind {
	case atomRef:
		return a.ref.String()
	case atomIs:
		return "=" + a.ref.String()
	case atomCarries:
		return "+" + a.ref.String()
	case atomOwner:
		return "$" + a.ref.String()
	case atomIndirect:
		return "@" + a.ref.String()
	case atomFlag:
		return "FLAG^" + a.name
	case atomPower:
		return "POWER^" + a.name
	case atomType:
		return "TYPE^" + a.name
	case atomName:
		return "NAME^" + a.pattern
	default:
		return a.name + ":" + a.pattern
	}
}

func carries(env Env, actor, obj dbref.Ref) bool {
	return env.Good(obj) && env.Location(obj) == actor && env.Type(obj) != world.TypeExit
}

func (a atomNode) eval(env Env, actor, target dbref.Ref, depth int) bool {
	switch a.kind {
	case atomRef:
		return actor == a.ref || carries(env, actor, a.ref)
	case atomIs:
		return actor == a.ref
	case atomCarries:
		return carries(env, actor, a.ref)
	case atomOwner:
		return env.Good(a.ref) && env.Owner(actor) == env.Owner(a.ref)
	case atomIndirect:
		if depth >= MaxDepth || !env.Good(a.ref) {
			return false
		}
		l := env.NamedLock(a.ref, Basic)
		if l == nil || l.root == nil {
			return true
		}
		return l.root.eval(env, actor, a.ref, depth+1)
	case atomFlag:
		return env.HasFlag(actor, a.name)
	case atomPower:
		return env.HasPower(actor, a.name)
	case atomType:
		return env.Type(actor) == a.typ
	case atomName:
		return wild.Test(a.pattern, env.Name(actor), pattern.Options{})
	default:
		candidates := append([]dbref.Ref{actor}, env.Contents(actor)...)
		return slices.ContainsFunc(candidates, func(obj dbref.Ref) bool {
			v, ok := env.AttrValue(obj, a.name)
			return ok && wild.Test(a.pattern, v, pattern.Options{})
		})
	}
}

func parseAtom(s string) (node, error) {
	upper := strings.ToUpper(s)
	switch upper {
	case "#TRUE":
		return constNode(true), nil
	case "#FALSE":
		return constNode(false), nil
	}

	switch s[0] {
	case '#':
		ref, err := dbref.Parse(s)
		if err != nil {
			return nil, err
		}
		return atomNode{kind: atomRef, ref: ref}, nil
	case '=', '+', '$', '@':
		ref, err := dbref.Parse(s[1:])
		if err != nil || !dbref.IsDbref(strings.TrimSpace(s[1:])) {
			return nil, oops.Code("LOCK_INVALID").With("atom", s).Errorf("expected an object reference after %q", s[:1])
		}
		kind := map[byte]atomKind{'=': atomIs, '+': atomCarries, '$': atomOwner, '@': atomIndirect}[s[0]]
		return atomNode{kind: kind, ref: ref}, nil
	}

	if key, rest, ok := strings.Cut(s, "^"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil, oops.Code("LOCK_INVALID").With("atom", s).Errorf("missing name in %q", s)
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FLAG":
			return atomNode{kind: atomFlag, name: strings.ToUpper(rest)}, nil
		case "POWER":
			return atomNode{kind: atomPower, name: strings.ToUpper(rest)}, nil
		case "TYPE":
			t, ok := world.ParseType(rest)
			if !ok {
				return nil, oops.Code("LOCK_INVALID").With("atom", s).Errorf("unknown type %q", rest)
			}
			return atomNode{kind: atomType, name: t.String(), typ: t}, nil
		case "NAME":
			return atomNode{kind: atomName, pattern: rest}, nil
		}
	}

	if name, pat, ok := strings.Cut(s, ":"); ok && strings.TrimSpace(name) != "" {
		return atomNode{kind: atomAttr, name: strings.ToUpper(strings.TrimSpace(name)), pattern: strings.TrimSpace(pat)}, nil
	}
	return nil, oops.Code("LOCK_INVALID").With("atom", s).Errorf("unrecognised lock atom %q", s)
}
