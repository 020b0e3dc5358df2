// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

func (s *Store) seeAll(p dbref.Ref) bool {
	return p != dbref.Nothing && (world.Royalty(s.graph, p) || s.graph.HasPower(p, "SEE_ALL"))
}

// CanRead reports whether reader may see attribute a on obj. Passing
// dbref.Nothing as reader asks whether the attribute is publicly visible.
func (s *Store) CanRead(reader, obj dbref.Ref, a *Attribute) bool {
	if a == nil || a.flags&FlagInternal != 0 {
		return false
	}
	if s.seeAll(reader) {
		return true
	}
	return s.canReadInternal(reader, obj, a)
}

// IsVisible reports whether a is readable by anyone.
func (s *Store) IsVisible(obj dbref.Ref, a *Attribute) bool {
	return s.CanRead(dbref.Nothing, obj, a)
}

func (s *Store) canReadInternal(reader, obj dbref.Ref, a *Attribute) bool {
	mortal := reader == dbref.Nothing
	visualObj := s.graph.HasFlag(obj, "VISUAL")
	cansee, canlook := visualObj, false
	if !mortal {
		cansee = s.graph.Controls(reader, obj) || visualObj
		canlook = s.graph.CanLook(reader, obj)
	}
	readable := func(a *Attribute) bool {
		if a.flags&(FlagInternal|FlagMDark) != 0 {
			return false
		}
		return cansee ||
			(a.flags&FlagVisual != 0 && (a.flags&FlagNearby == 0 || canlook)) ||
			(!mortal && !s.graph.HasFlag(reader, "MISTRUST") && s.graph.Owner(a.creator) == s.graph.Owner(reader))
	}

	if !readable(a) {
		return false
	}
	name := a.Name()
	bs := branches(name)
	if len(bs) == 0 {
		return true
	}
next:
	for _, target := range s.chain(obj) {
		for _, b := range bs {
			root := s.lookup(target, b)
			if root == nil || (target != obj && root.flags&FlagPrivate != 0) {
				continue next
			}
			if !readable(root) {
				return false
			}
		}
		if s.lookup(target, name) != nil {
			return true
		}
	}
	return false
}

// cannotWrite is the per-attribute write rule. God writes anything;
// nobody else writes internal attributes, or safe ones when safe is set;
// wizards write the rest; others need a non-wizard attribute that is
// either unlocked or created by their owner.
func (s *Store) cannotWrite(p dbref.Ref, a *Attribute, safe bool) bool {
	if world.IsGod(s.graph, p) {
		return false
	}
	if a.flags&FlagInternal != 0 || (safe && a.flags&FlagSafe != 0) {
		return true
	}
	if world.Wizard(s.graph, p) {
		return false
	}
	return a.flags&FlagWizard != 0 || (a.flags&FlagLocked != 0 && a.creator != s.graph.Owner(p))
}

// CanWrite reports whether writer may modify attribute a on obj, checking
// every branch above it.
func (s *Store) CanWrite(writer, obj dbref.Ref, a *Attribute) bool {
	return s.checkWrite(writer, obj, a, true).OK()
}

func (s *Store) checkWrite(p, obj dbref.Ref, a *Attribute, safe bool) Result {
	if s.cannotWrite(p, a, safe) {
		return Result{Code: Failed}
	}
	for _, b := range branches(a.Name()) {
		root := s.lookup(obj, b)
		if root == nil {
			return Result{Code: Failed, Missing: b}
		}
		if s.cannotWrite(p, root, safe) {
			return Result{Code: Failed}
		}
	}
	return Result{Code: OK}
}

// checkCreate decides whether p may create name on obj, including any
// branch attributes that would have to be created along the way.
func (s *Store) checkCreate(p, obj dbref.Ref, name string, flags Flags) Result {
	owner := s.graph.Owner(p)
	tmp := &Attribute{flags: s.defaultFlags(name, flags), creator: owner}
	if s.cannotWrite(p, tmp, true) {
		return Result{Code: Failed}
	}
	fresh := 1
	for _, b := range branches(name) {
		root := s.lookup(obj, b)
		if root == nil {
			root = &Attribute{flags: s.defaultFlags(b, flags), creator: owner}
			fresh++
		}
		if s.cannotWrite(p, root, true) {
			return Result{Code: Failed}
		}
		if root.flags&FlagNoDump != 0 && !world.IsGod(s.graph, p) {
			return Result{Code: Failed}
		}
	}
	if s.Count(obj)+fresh > s.maxAttrs(obj) {
		return Result{Code: TooMany}
	}
	return Result{Code: OK}
}
