// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"slices"
	"sort"
	"strings"
)

// Standard describes a well-known attribute name and the flags it is
// created with.
type Standard struct {
	Name    string
	Flags   Flags
	Aliases []string
}

// StandardTable holds the standard attributes, their aliases and a sorted
// name index for prefix matching.
type StandardTable struct {
	byName  map[string]*Standard
	aliases map[string]string
	names   []string
}

const (
	visProg = FlagVisual | FlagNoProg | FlagPrefixMatch
	locked  = FlagWizard | FlagLocked | FlagNoCopy
	noProg  = FlagNoProg | FlagPrefixMatch
)

var builtinStandards = []Standard{
	{Name: "AAHEAR", Flags: noProg},
	{Name: "ACONNECT", Flags: noProg},
	{Name: "ADESCRIBE", Flags: noProg, Aliases: []string{"ADESC"}},
	{Name: "ADISCONNECT", Flags: noProg},
	{Name: "AENTER", Flags: noProg},
	{Name: "AFAILURE", Flags: noProg, Aliases: []string{"AFAIL"}},
	{Name: "AHEAR", Flags: noProg},
	{Name: "ALEAVE", Flags: noProg},
	{Name: "ALIAS", Flags: FlagVisual | FlagNoProg | FlagNoCopy | FlagPrefixMatch},
	{Name: "AMHEAR", Flags: noProg},
	{Name: "AMOVE", Flags: noProg},
	{Name: "ASUCCESS", Flags: noProg, Aliases: []string{"ASUCC"}},
	{Name: "AUSE", Flags: noProg},
	{Name: "COMMAND_LOCK", Flags: FlagNoProg},
	{Name: "COMMAND_LOCK`AFAILURE", Flags: FlagNoProg},
	{Name: "COMMAND_LOCK`FAILURE", Flags: FlagNoProg},
	{Name: "COMMAND_LOCK`OFAILURE", Flags: FlagNoProg},
	{Name: "DESCRIBE", Flags: visProg, Aliases: []string{"DESC"}},
	{Name: "DROP", Flags: noProg},
	{Name: "EALIAS", Flags: noProg},
	{Name: "ENTER", Flags: noProg},
	{Name: "FAILURE", Flags: noProg, Aliases: []string{"FAIL"}},
	{Name: "FORWARDLIST", Flags: FlagNoProg},
	{Name: "HAVEN", Flags: noProg},
	{Name: "IDESCRIBE", Flags: noProg, Aliases: []string{"IDESC"}},
	{Name: "LALIAS", Flags: noProg},
	{Name: "LAST", Flags: FlagVisual | FlagWizard | FlagNoCopy | FlagLocked | FlagNoProg},
	{Name: "LASTSITE", Flags: locked | FlagMDark | FlagNoProg},
	{Name: "LEAVE", Flags: noProg},
	{Name: "LISTEN", Flags: noProg},
	{Name: "MOVE", Flags: noProg},
	{Name: "ODESCRIBE", Flags: noProg, Aliases: []string{"ODESC"}},
	{Name: "OFAILURE", Flags: noProg, Aliases: []string{"OFAIL"}},
	{Name: "OSUCCESS", Flags: noProg, Aliases: []string{"OSUCC"}},
	{Name: "SEX", Flags: FlagVisual | FlagNoProg | FlagPrefixMatch, Aliases: []string{"GENDER"}},
	{Name: "STARTUP", Flags: FlagNoProg},
	{Name: "SUCCESS", Flags: noProg, Aliases: []string{"SUCC"}},
	{Name: "USE", Flags: noProg},
	{Name: "XYXXY", Flags: FlagInternal | FlagNoCopy | FlagWizard | FlagLocked | FlagNoProg},
}

// DefaultStandard returns a table populated with the builtin standard
// attributes.
func DefaultStandard() *StandardTable {
	t := &StandardTable{byName: map[string]*Standard{}, aliases: map[string]string{}}
	for _, s := range builtinStandards {
		t.Add(s)
	}
	return t
}

// Add inserts or replaces a standard attribute.
func (t *StandardTable) Add(s Standard) {
	s.Name = strings.ToUpper(s.Name)
	s.Aliases = slices.Clone(s.Aliases)
	if _, exists := t.byName[s.Name]; !exists {
		i := sort.SearchStrings(t.names, s.Name)
		t.names = slices.Insert(t.names, i, s.Name)
	}
	t.byName[s.Name] = &s
	for _, a := range s.Aliases {
		t.aliases[strings.ToUpper(a)] = s.Name
	}
}

// Lookup returns the standard attribute with exactly this name. Aliases
// are not consulted.
func (t *StandardTable) Lookup(name string) (Standard, bool) {
	if t == nil {
		return Standard{}, false
	}
	s, ok := t.byName[strings.ToUpper(name)]
	if !ok {
		return Standard{}, false
	}
	return *s, true
}

// Canonical resolves an alias to its standard attribute name.
func (t *StandardTable) Canonical(alias string) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.aliases[strings.ToUpper(alias)]
	return name, ok
}

// Match finds a standard attribute by exact name, alias, or unambiguous
// prefix, in that order.
func (t *StandardTable) Match(name string) (Standard, bool) {
	if t == nil || name == "" {
		return Standard{}, false
	}
	name = strings.ToUpper(name)
	if s, ok := t.byName[name]; ok {
		return *s, true
	}
	if canon, ok := t.aliases[name]; ok {
		return *t.byName[canon], true
	}
	i := sort.SearchStrings(t.names, name)
	if i >= len(t.names) || !strings.HasPrefix(t.names[i], name) {
		return Standard{}, false
	}
	if i+1 < len(t.names) && strings.HasPrefix(t.names[i+1], name) {
		return Standard{}, false
	}
	return *t.byName[t.names[i]], true
}
