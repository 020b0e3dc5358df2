// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/holomush/pennmush/internal/dbref"
)

// Visitor is called for each attribute an iteration selects. on is the
// object the attribute was found on. Visitor results are summed.
type Visitor func(on dbref.Ref, a *Attribute) int

// IterOptions controls attribute iteration.
type IterOptions struct {
	// Mortal selects attributes anyone could read instead of those the
	// reader can read.
	Mortal bool
	// Regex treats the pattern as a regular expression.
	Regex bool
}

// namePattern matches attribute names. In glob mode '*' and '?' stay
// within one branch level and '**' crosses levels.
type namePattern struct {
	exact string
	glob  glob.Glob
	re    *regexp.Regexp
}

func compileNamePattern(pat string, regex bool) (*namePattern, bool) {
	if pat == "" {
		if regex {
			pat, regex = "**", false
		} else {
			pat = "*"
		}
	}
	if regex {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, false
		}
		return &namePattern{re: re}, true
	}
	pat = strings.ToUpper(pat)
	if !strings.HasSuffix(pat, "`") && !strings.ContainsAny(pat, "*?\\") {
		return &namePattern{exact: pat}, true
	}
	if strings.HasSuffix(pat, "`") {
		pat += "*"
	}
	g, err := glob.Compile(pat, Separator)
	if err != nil {
		return nil, false
	}
	return &namePattern{glob: g}, true
}

func (p *namePattern) match(name string) bool {
	if p.re != nil {
		return p.re.MatchString(name)
	}
	return p.glob.Match(name)
}

func (s *Store) readable(reader, obj dbref.Ref, a *Attribute, mortal bool) bool {
	if mortal {
		return s.IsVisible(obj, a)
	}
	return s.CanRead(reader, obj, a)
}

// Iterate visits the attributes on obj whose names match pat and that
// reader may read, in collation order. An empty pattern selects every
// top-level attribute, or every attribute in regex mode. A pattern ending
// in the separator selects the children of that branch. The visitor may
// clear attributes; removed attributes are not visited.
func (s *Store) Iterate(reader, obj dbref.Ref, pat string, opts IterOptions, visit Visitor) int {
	np, ok := compileNamePattern(pat, opts.Regex)
	if !ok {
		return 0
	}
	if np.exact != "" {
		a := s.Get(obj, np.exact)
		if a == nil || !s.readable(reader, obj, a, opts.Mortal) {
			return 0
		}
		return visit(obj, a)
	}

	total := 0
	for _, a := range s.List(obj) {
		if s.lookup(obj, a.Name()) != a {
			continue
		}
		if np.match(a.Name()) && s.readable(reader, obj, a, opts.Mortal) {
			total += visit(obj, a)
		}
	}
	return total
}

// IterateInherited is Iterate over obj and its parent chain. An attribute
// on a child shadows a parent's attribute of the same name, and private
// attributes and branches on parents are skipped.
func (s *Store) IterateInherited(reader, obj dbref.Ref, pat string, opts IterOptions, visit Visitor) int {
	np, ok := compileNamePattern(pat, opts.Regex)
	if !ok {
		return 0
	}
	if np.exact != "" {
		a, where := s.GetInherited(obj, np.exact, false)
		if a == nil || !s.readable(reader, obj, a, opts.Mortal) {
			return 0
		}
		return visit(where, a)
	}

	seen := map[string]struct{}{}
	total := 0
	for _, target := range s.chain(obj) {
		var private []string
		for _, a := range s.List(target) {
			name := a.Name()
			if _, dup := seen[name]; dup {
				continue
			}
			if target != obj {
				if underAny(name, private) {
					continue
				}
				if a.flags&FlagPrivate != 0 {
					private = append(private, name)
					continue
				}
			}
			seen[name] = struct{}{}
			if np.match(name) && s.readable(reader, obj, a, opts.Mortal) {
				total += visit(target, a)
			}
		}
	}
	return total
}

func underAny(name string, roots []string) bool {
	for _, r := range roots {
		if childOf(name, r) {
			return true
		}
	}
	return false
}
