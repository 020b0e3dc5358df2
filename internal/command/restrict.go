// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/world"
)

// permToken is a restriction keyword that toggles a descriptor field.
type permToken struct {
	name string
	set  func(d *Descriptor, on bool)
	get  func(d *Descriptor) bool
}

func typeToken(name string, t world.Type) permToken {
	return permToken{
		name: name,
		set: func(d *Descriptor, on bool) {
			if on {
				d.Types |= t
			} else {
				d.Types &^= t
			}
		},
		get: func(d *Descriptor) bool { return d.Types&t == t },
	}
}

func loggingToken(name string, l Logging) permToken {
	return permToken{
		name: name,
		set: func(d *Descriptor, on bool) {
			switch {
			case on:
				d.Logging = l
			case d.Logging == l:
				d.Logging = LogNone
			}
		},
		get: func(d *Descriptor) bool { return d.Logging == l },
	}
}

func boolToken(name string, field func(d *Descriptor) *bool) permToken {
	return permToken{
		name: name,
		set:  func(d *Descriptor, on bool) { *field(d) = on },
		get:  func(d *Descriptor) bool { return *field(d) },
	}
}

var permTokens = []permToken{
	typeToken("player", world.TypePlayer),
	typeToken("thing", world.TypeThing),
	typeToken("exit", world.TypeExit),
	typeToken("room", world.TypeRoom),
	typeToken("any", world.TypeAny),
	boolToken("god", func(d *Descriptor) *bool { return &d.God }),
	boolToken("nobody", func(d *Descriptor) *bool { return &d.Disabled }),
	boolToken("nogagged", func(d *Descriptor) *bool { return &d.NoGagged }),
	boolToken("noguest", func(d *Descriptor) *bool { return &d.NoGuest }),
	boolToken("nofixed", func(d *Descriptor) *bool { return &d.NoFixed }),
	loggingToken("logargs", LogArgs),
	loggingToken("logname", LogName),
}

func visibilityToken(name string, v Visibility) permToken {
	return permToken{
		name: name,
		set: func(d *Descriptor, on bool) {
			switch {
			case on:
				d.Visibility = v
			case d.Visibility == v:
				d.Visibility = Normal
			}
		},
		get: func(d *Descriptor) bool { return d.Visibility == v },
	}
}

// policyTokens change how a command is parsed and found rather than who
// may use it. Restriction does not list them.
var policyTokens = []permToken{
	boolToken("listed", func(d *Descriptor) *bool { return &d.Listed }),
	boolToken("switches", func(d *Descriptor) *bool { return &d.AnySwitch }),
	visibilityToken("internal", Internal),
	boolToken("ls_space", func(d *Descriptor) *bool { return &d.Policy.LSSpace }),
	boolToken("ls_noparse", func(d *Descriptor) *bool { return &d.Policy.NoParse }),
	boolToken("rs_space", func(d *Descriptor) *bool { return &d.Policy.RSSpace }),
	boolToken("rs_noparse", func(d *Descriptor) *bool { return &d.Policy.RSNoParse }),
	boolToken("eqsplit", func(d *Descriptor) *bool { return &d.Policy.EqSplit }),
	boolToken("ls_args", func(d *Descriptor) *bool { return &d.Policy.LSArgs }),
	boolToken("rs_args", func(d *Descriptor) *bool { return &d.Policy.RSArgs }),
}

func findPermToken(name string) (permToken, bool) {
	for _, list := range [][]permToken{permTokens, policyTokens} {
		for _, p := range list {
			if strings.EqualFold(p.name, name) {
				return p, true
			}
		}
	}
	return permToken{}, false
}

// Restrict replaces the lock on d. The restriction is either a lock
// expression or a space separated list of tokens, optionally followed by a
// '"' and the message shown when the lock fails.
//
// Tokens name types (player, thing, exit, room, any), restrictions (god,
// nogagged, noguest, nofixed), nobody (disable), logging (logargs,
// logname), parse policy (ls_space, ls_noparse, rs_space, rs_noparse,
// eqsplit, ls_args, rs_args), switches (accept any switch), internal,
// listed, "admin" or any flag or power. A leading '!' clears the token.
// Type and restriction tokens change the descriptor cumulatively; the
// flags and powers given replace the previous ones, and holding any one of
// them is enough. Unknown tokens are ignored.
func (t *Table) Restrict(d *Descriptor, restriction string) error {
	if d == nil {
		return ErrUnknownCommand("")
	}
	if strings.TrimSpace(restriction) == "" {
		return ErrInvalidArgs(d.Name, "Restrict attempt failed.")
	}

	d.RestrictMessage = ""
	text, msg, found := strings.Cut(restriction, `"`)
	if found {
		d.RestrictMessage = strings.TrimSpace(msg)
	}
	d.Lock = nil
	d.exprLock = false
	d.restrictFlags, d.restrictPowers = nil, nil

	if l, err := lock.Parse(text); err == nil && !l.IsTrue() {
		d.Lock = l
		d.exprLock = true
		return nil
	}

	for _, tok := range strings.Fields(text) {
		clear := false
		if strings.HasPrefix(tok, "!") {
			tok = tok[1:]
			clear = true
		}
		if strings.EqualFold(tok, "noplayer") {
			clear = !clear
			tok = tok[2:]
		}

		switch {
		case strings.EqualFold(tok, "admin"):
			for _, f := range []string{"ROYALTY", "WIZARD"} {
				d.restrictFlags = toggle(d.restrictFlags, f, !clear)
			}
		case world.IsFlag(tok):
			d.restrictFlags = toggle(d.restrictFlags, strings.ToUpper(tok), !clear)
		case world.IsPower(tok):
			d.restrictPowers = toggle(d.restrictPowers, strings.ToUpper(tok), !clear)
		default:
			if p, ok := findPermToken(tok); ok {
				p.set(d, !clear)
			}
		}
	}

	l, err := t.buildLock(d)
	if err != nil {
		return oops.With("command", d.Name).Wrap(err)
	}
	d.Lock = l
	return nil
}

// restrictTokens rebuilds the lock of a new descriptor from its fields.
func (t *Table) restrictTokens(d *Descriptor) error {
	l, err := t.buildLock(d)
	if err != nil {
		return oops.With("command", d.Name).Wrap(err)
	}
	d.Lock = l
	return nil
}

func toggle(list []string, name string, on bool) []string {
	i := slices.Index(list, name)
	switch {
	case on && i < 0:
		return append(list, name)
	case !on && i >= 0:
		return slices.Delete(list, i, i+1)
	}
	return list
}

// buildLock synthesizes the lock for a token restriction. Disabled and
// logging are checked by the dispatcher and never appear in the lock.
func (t *Table) buildLock(d *Descriptor) (*lock.Lock, error) {
	var clauses []string

	grants := make([]string, 0, len(d.restrictFlags)+len(d.restrictPowers))
	for _, f := range d.restrictFlags {
		grants = append(grants, "FLAG^"+f)
	}
	for _, p := range d.restrictPowers {
		grants = append(grants, "POWER^"+p)
	}
	if len(grants) > 0 {
		clauses = append(clauses, "("+strings.Join(grants, "|")+")")
	}

	if d.Types&world.TypeAny != world.TypeAny {
		var types []string
		for _, tt := range []world.Type{world.TypePlayer, world.TypeThing, world.TypeRoom, world.TypeExit} {
			if d.Types&tt != 0 {
				types = append(types, "TYPE^"+tt.String())
			}
		}
		if len(types) == 0 {
			clauses = append(clauses, "#FALSE")
		} else {
			clauses = append(clauses, "("+strings.Join(types, "|")+")")
		}
	}
	if d.God {
		clauses = append(clauses, "="+t.god.String())
	}
	if d.NoGuest {
		clauses = append(clauses, "!POWER^GUEST")
	}
	if d.NoGagged {
		clauses = append(clauses, "!FLAG^GAGGED")
	}
	if d.NoFixed {
		clauses = append(clauses, "!FLAG^FIXED")
	}

	if len(clauses) == 0 {
		return nil, nil
	}
	return lock.Parse(strings.Join(clauses, "&"))
}

// Restriction returns a restriction string that, given to Restrict,
// reproduces the current lock and restriction fields of d.
func (d *Descriptor) Restriction() string {
	var b strings.Builder
	if d.exprLock {
		b.WriteString(d.Lock.String())
	} else {
		var toks []string
		if d.Types&world.TypeAny == world.TypeAny {
			toks = append(toks, "any")
		} else {
			toks = append(toks, "!any")
			for _, p := range permTokens[:4] {
				if p.get(d) {
					toks = append(toks, p.name)
				}
			}
		}
		for _, p := range permTokens[5:] {
			if p.get(d) {
				toks = append(toks, p.name)
			} else {
				toks = append(toks, "!"+p.name)
			}
		}
		toks = append(toks, d.restrictFlags...)
		toks = append(toks, d.restrictPowers...)
		b.WriteString(strings.Join(toks, " "))
	}
	if d.RestrictMessage != "" {
		b.WriteString(` "`)
		b.WriteString(d.RestrictMessage)
	}
	return b.String()
}
