// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"strings"

	"github.com/samber/oops"
)

// Flags is the attribute flag bitset. Bit values match the historical
// database encoding so persisted rows stay portable.
type Flags uint32

// Attribute flags.
const (
	FlagQuiet       Flags = 0x1
	FlagInternal    Flags = 0x2
	FlagWizard      Flags = 0x4
	FlagLocked      Flags = 0x10
	FlagNoProg      Flags = 0x20
	FlagMDark       Flags = 0x40
	FlagPrivate     Flags = 0x80
	FlagNoCopy      Flags = 0x100
	FlagVisual      Flags = 0x200
	FlagRegexp      Flags = 0x400
	FlagCase        Flags = 0x800
	FlagSafe        Flags = 0x1000
	FlagRoot        Flags = 0x2000
	FlagRLimit      Flags = 0x4000
	FlagEnum        Flags = 0x8000
	FlagCommand     Flags = 0x20000
	FlagListen      Flags = 0x40000
	FlagNoDump      Flags = 0x80000
	FlagPrefixMatch Flags = 0x200000
	FlagVeiled      Flags = 0x400000
	FlagDebug       Flags = 0x800000
	FlagNearby      Flags = 0x1000000
	FlagPublic      Flags = 0x2000000
	FlagNoName      Flags = 0x8000000
	FlagNoSpace     Flags = 0x10000000
	FlagMHear       Flags = 0x20000000
	FlagAHear       Flags = 0x40000000
	FlagNoDebug     Flags = 0x80000000
)

// internalFlags are maintained by the store and never taken from callers.
const internalFlags = FlagRoot | FlagCommand | FlagListen

type flagInfo struct {
	name     string
	letter   byte
	bit      Flags
	settable bool
}

// flagTable lists flag names in display order. Aliases follow the canonical
// name for the same bit.
var flagTable = []flagInfo{
	{"no_command", '$', FlagNoProg, true},
	{"no_inherit", 'i', FlagPrivate, true},
	{"private", 'i', FlagPrivate, true},
	{"no_clone", 'c', FlagNoCopy, true},
	{"wizard", 'w', FlagWizard, true},
	{"visual", 'v', FlagVisual, true},
	{"mortal_dark", 'm', FlagMDark, true},
	{"hidden", 'm', FlagMDark, true},
	{"regexp", 'R', FlagRegexp, true},
	{"case", 'C', FlagCase, true},
	{"locked", '+', FlagLocked, true},
	{"safe", 'S', FlagSafe, true},
	{"internal", 0, FlagInternal, false},
	{"prefixmatch", 0, FlagPrefixMatch, true},
	{"veiled", 'V', FlagVeiled, true},
	{"debug", 'b', FlagDebug, true},
	{"no_debug", 'B', FlagNoDebug, true},
	{"public", 'p', FlagPublic, true},
	{"nearby", 'n', FlagNearby, true},
	{"noname", 'N', FlagNoName, true},
	{"no_name", 'N', FlagNoName, true},
	{"nospace", 's', FlagNoSpace, true},
	{"no_space", 's', FlagNoSpace, true},
	{"amhear", 'M', FlagMHear, true},
	{"aahear", 'A', FlagAHear, true},
	{"quiet", 'Q', FlagQuiet, true},
	{"enum", 0, FlagEnum, false},
	{"limit", 0, FlagRLimit, false},
	{"branch", '`', FlagRoot, false},
}

// Has reports whether every bit of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// String renders the set flags as space-separated names.
func (f Flags) String() string {
	var names []string
	var seen Flags
	for _, fi := range flagTable {
		if f&fi.bit != 0 && seen&fi.bit == 0 {
			names = append(names, fi.name)
			seen |= fi.bit
		}
	}
	return strings.Join(names, " ")
}

// Letters renders the set flags as their one-character abbreviations.
func (f Flags) Letters() string {
	var b strings.Builder
	var seen Flags
	for _, fi := range flagTable {
		if fi.letter != 0 && f&fi.bit != 0 && seen&fi.bit == 0 {
			b.WriteByte(fi.letter)
			seen |= fi.bit
		}
	}
	return b.String()
}

// LookupFlag finds a flag by name, ignoring case.
func LookupFlag(name string) (Flags, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, fi := range flagTable {
		if fi.name == name {
			return fi.bit, true
		}
	}
	return 0, false
}

// ParseFlags parses a space-separated flag list. Names prefixed with '!'
// are returned in clear. Only user-settable flags are accepted.
func ParseFlags(list string) (set, clear Flags, err error) {
	for _, word := range strings.Fields(list) {
		neg := strings.HasPrefix(word, "!")
		name := strings.TrimPrefix(word, "!")
		bit, ok := lookupSettable(name)
		if !ok {
			return 0, 0, oops.Code("ATTR_FLAG_UNKNOWN").With("flag", name).Errorf("unknown attribute flag %q", name)
		}
		if neg {
			clear |= bit
		} else {
			set |= bit
		}
	}
	return set, clear, nil
}

// ParseStoredFlags parses a flag list read back from storage, where
// internal flags are allowed.
func ParseStoredFlags(list string) (Flags, error) {
	var out Flags
	for _, word := range strings.Fields(list) {
		bit, ok := LookupFlag(word)
		if !ok {
			return 0, oops.Code("ATTR_FLAG_UNKNOWN").With("flag", word).Errorf("unknown attribute flag %q", word)
		}
		out |= bit
	}
	return out, nil
}

func lookupSettable(name string) (Flags, bool) {
	name = strings.ToLower(name)
	for _, fi := range flagTable {
		if fi.name == name && fi.settable {
			return fi.bit, true
		}
	}
	return 0, false
}
