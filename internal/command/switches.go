// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"math/bits"
	"slices"
	"strings"

	"github.com/samber/oops"
)

// LoadState is the phase of command loading.
type LoadState uint8

// Loading phases. Builtin commands are registered first, then local
// commands from configuration, then the table is finalized once.
const (
	LoadBuiltin LoadState = iota
	LoadLocal
	LoadDone
)

func (s LoadState) String() string {
	switch s {
	case LoadBuiltin:
		return "builtin"
	case LoadLocal:
		return "local"
	default:
		return "done"
	}
}

// Switches the dispatcher sets on its own.
const (
	// SwitchNone is set when no switch was given.
	SwitchNone = "NONE"
	// SwitchNoEval is set by the noeval token and forces literal arguments.
	SwitchNoEval = "NOEVAL"
)

// SwitchSet is a bitmask indexed by position in the finalized switch
// table.
type SwitchSet []uint64

func (s SwitchSet) has(i int) bool {
	w := i / 64
	return w < len(s) && s[w]&(1<<(uint(i)%64)) != 0
}

func (s *SwitchSet) set(i int) {
	w := i / 64
	for len(*s) <= w {
		*s = append(*s, 0)
	}
	(*s)[w] |= 1 << (uint(i) % 64)
}

// Len returns the number of switches in the set.
func (s SwitchSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Clone returns a copy of the set.
func (s SwitchSet) Clone() SwitchSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Switches is the table of switch names shared by every command.
type Switches struct {
	state   LoadState
	names   []string
	index   map[string]int
	pending map[string]struct{}
}

// NewSwitches creates a switch table from the names builtin commands may
// use. NONE and NOEVAL are always present.
func NewSwitches(builtin []string) *Switches {
	s := &Switches{pending: map[string]struct{}{}}
	s.rebuild(append(slices.Clone(builtin), SwitchNone, SwitchNoEval))
	return s
}

func (s *Switches) rebuild(names []string) {
	up := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			up = append(up, n)
		}
	}
	slices.Sort(up)
	s.names = slices.Compact(up)
	s.index = make(map[string]int, len(s.names))
	for i, n := range s.names {
		s.index[n] = i
	}
}

// State returns the current loading phase.
func (s *Switches) State() LoadState { return s.state }

// declare records the switch names a new command uses. Builtin commands
// may only use names from the builtin table. Local commands add unknown
// names to the table when it is finalized.
func (s *Switches) declare(names []string) error {
	for _, n := range names {
		n = strings.ToUpper(n)
		if _, ok := s.index[n]; ok {
			continue
		}
		switch s.state {
		case LoadBuiltin:
			return oops.Code(CodeUnknownSwitch).With("switch", n).Errorf("switch %s is not in the builtin switch table", n)
		case LoadLocal:
			s.pending[n] = struct{}{}
		}
	}
	return nil
}

// finalize merges switches declared by local commands into the table.
func (s *Switches) finalize() error {
	if s.state == LoadDone {
		return oops.Code(CodeAlreadyFinalized).Errorf("switch table already finalized")
	}
	names := slices.Clone(s.names)
	for n := range s.pending {
		names = append(names, n)
	}
	s.rebuild(names)
	s.pending = nil
	s.state = LoadDone
	return nil
}

// Mask converts switch names to a set. It fails if any name is unknown.
func (s *Switches) Mask(names []string) (SwitchSet, bool) {
	var set SwitchSet
	for _, n := range names {
		i, ok := s.index[strings.ToUpper(n)]
		if !ok {
			return nil, false
		}
		set.set(i)
	}
	return set, true
}

// Find returns the first switch in table order that is in allowed and
// starts with prefix.
func (s *Switches) Find(allowed SwitchSet, prefix string) (int, bool) {
	prefix = strings.ToUpper(prefix)
	if prefix == "" {
		return 0, false
	}
	for i, n := range s.names {
		if allowed.has(i) && strings.HasPrefix(n, prefix) {
			return i, true
		}
	}
	return 0, false
}

// Index returns the position of an exact switch name.
func (s *Switches) Index(name string) (int, bool) {
	i, ok := s.index[strings.ToUpper(name)]
	return i, ok
}

// Has reports whether set contains the named switch.
func (s *Switches) Has(set SwitchSet, name string) bool {
	i, ok := s.index[strings.ToUpper(name)]
	return ok && set.has(i)
}

// Names lists the switches in set in table order.
func (s *Switches) Names(set SwitchSet) []string {
	var out []string
	for i, n := range s.names {
		if set.has(i) {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of known switches.
func (s *Switches) Len() int { return len(s.names) }
