// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/pattern"
)

// Lock names consulted by command matching.
const (
	LockCommand = "Command"
	LockListen  = "Listen"
	LockUse     = "Use"
)

// LockFunc reports whether actor passes the named lock on thing.
type LockFunc func(actor, thing dbref.Ref, lock string) bool

// Match is one attribute whose pattern accepted the input.
type Match struct {
	// Thing is the object being searched.
	Thing dbref.Ref
	// Source is the object the attribute lives on, Thing or a parent.
	Source   dbref.Ref
	Attr     *Attribute
	Code     string
	Captures []string
}

// MatchOptions controls CommandMatch.
type MatchOptions struct {
	// Kind selects $command or ^listen attributes.
	Kind pattern.Kind
	// CheckLocks applies the halt and no_command checks and the command
	// and use locks.
	CheckLocks bool
	// JustMatch counts matches without reporting them.
	JustMatch bool
	// Locks evaluates locks. A nil Locks passes everything.
	Locks LockFunc
}

func (o MatchOptions) pass(actor, thing dbref.Ref, lock string) bool {
	return o.Locks == nil || o.Locks(actor, thing, lock)
}

// matchBody tries one attribute against the input.
func (s *Store) matchBody(a *Attribute, kind pattern.Kind, input string) (pattern.Body, []string, bool) {
	body, ok := pattern.ParseBody(a.Value(), pattern.DefaultDelimiter)
	if !ok || body.Kind != kind {
		return pattern.Body{}, nil, false
	}
	caps, ok := s.matcher.Captures(body.Pattern, input, pattern.Options{
		Regex:         a.flags&FlagRegexp != 0,
		CaseSensitive: a.flags&FlagCase != 0,
	})
	return body, caps, ok
}

// CommandMatch sweeps thing's $command (or ^listen) attributes, and those
// it inherits, for patterns matching input. Every match is passed to fn
// unless JustMatch is set. With CheckLocks, thing's command (or listen)
// lock and use lock are checked once, at the first match; if either fails
// the sweep stops, no matches are reported, and lockFailed is true so the
// caller can record thing for failure messages.
func (s *Store) CommandMatch(thing, actor dbref.Ref, input string, opts MatchOptions, fn func(Match)) (matched int, lockFailed bool) {
	g := s.graph
	if opts.Kind == 0 {
		opts.Kind = pattern.KindCommand
	}
	if opts.CheckLocks {
		if !g.Good(thing) || g.Halted(thing) || (opts.Kind == pattern.KindCommand && g.HasFlag(thing, "NO_COMMAND")) {
			return 0, false
		}
	}
	flagMask, lockName := FlagCommand, LockCommand
	if opts.Kind == pattern.KindListen {
		flagMask, lockName = FlagListen, LockListen
	}

	targets := []dbref.Ref{thing}
	if g.Good(g.Parent(thing)) && (opts.Kind == pattern.KindCommand || g.HasFlag(thing, "LISTEN_PARENT")) {
		targets = s.chain(thing)
	}

	seen := map[string]struct{}{}
	var noProg, private []string
	lockChecked := false

	for _, target := range targets {
		for _, a := range s.List(target) {
			name := a.Name()
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if underAny(name, noProg) || (target != thing && underAny(name, private)) {
				continue
			}
			if a.flags&FlagNoProg != 0 {
				noProg = append(noProg, name)
				continue
			}
			if target != thing && a.flags&FlagPrivate != 0 {
				private = append(private, name)
				continue
			}
			if a.flags&flagMask == 0 {
				continue
			}
			if opts.Kind == pattern.KindListen && a.flags&FlagAHear == 0 {
				mhear := a.flags&FlagMHear != 0
				if (thing == actor && !mhear) || (thing != actor && mhear) {
					continue
				}
			}

			body, caps, ok := s.matchBody(a, opts.Kind, input)
			if !ok {
				continue
			}
			if opts.CheckLocks && !lockChecked {
				lockChecked = true
				if !opts.pass(actor, thing, lockName) || !opts.pass(actor, thing, LockUse) {
					return 0, true
				}
			}
			matched++
			if !opts.JustMatch && fn != nil {
				fn(Match{Thing: thing, Source: target, Attr: a, Code: body.Code, Captures: caps})
			}
		}
	}
	return matched, false
}

// OneCommandMatch tries a single named $command attribute on thing,
// inherited if need be. The command and use locks must pass.
func (s *Store) OneCommandMatch(thing, actor dbref.Ref, attr, input string, locks LockFunc, fn func(Match)) bool {
	g := s.graph
	if !g.Good(thing) || g.Halted(thing) || g.HasFlag(thing, "NO_COMMAND") {
		return false
	}
	a, source := s.GetInherited(thing, attr, true)
	if a == nil || a.flags&FlagCommand == 0 {
		return false
	}
	body, caps, ok := s.matchBody(a, pattern.KindCommand, input)
	if !ok {
		return false
	}
	opts := MatchOptions{Locks: locks}
	if !opts.pass(actor, thing, LockCommand) || !opts.pass(actor, thing, LockUse) {
		return false
	}
	if fn != nil {
		fn(Match{Thing: thing, Source: source, Attr: a, Code: body.Code, Captures: caps})
	}
	return true
}

// AttrValue returns the value of name on obj or its parents. It satisfies
// the attribute lookup needed by lock evaluation.
func (s *Store) AttrValue(obj dbref.Ref, name string) (string, bool) {
	a, _ := s.GetInherited(obj, name, false)
	if a == nil {
		return "", false
	}
	return a.Value(), true
}
