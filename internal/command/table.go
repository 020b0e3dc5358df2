// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// Spec describes a command to register or add.
type Spec struct {
	Name string
	// Switches is a space separated list of accepted switches.
	Switches string
	Handler  Handler
	// Types limits the command to objects of these types. Zero means any.
	Types    world.Type
	Policy   ParsePolicy
	Internal bool
	Disabled bool

	God      bool
	NoGagged bool
	NoGuest  bool
	NoFixed  bool

	AnySwitch  bool
	NOP        bool
	Deprecated bool
	Logging    Logging
	Redact     Redaction

	// Flags and Powers are space separated; holding any one of them is
	// enough to use the command.
	Flags  string
	Powers string
}

type entry struct {
	name string
	d    *Descriptor
}

// Table maps command names and aliases to descriptors. Lookups accept any
// unambiguous prefix of a name. It is not safe for concurrent use; commands
// are dispatched one at a time.
type Table struct {
	entries  []entry
	reserved map[string]struct{}
	switches *Switches
	god      dbref.Ref
	logger   *slog.Logger
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithReservedAliases reserves names that never resolve to a command, so
// that short exit aliases are not captured by command prefixes.
func WithReservedAliases(names ...string) TableOption {
	return func(t *Table) {
		for _, n := range names {
			if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
				t.reserved[n] = struct{}{}
			}
		}
	}
}

// WithGod sets the object used by the "god" restriction.
func WithGod(ref dbref.Ref) TableOption {
	return func(t *Table) {
		t.god = ref
	}
}

// WithTableLogger sets the logger. The default is slog.Default().
func WithTableLogger(l *slog.Logger) TableOption {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTable creates an empty table using the given switch table.
func NewTable(sw *Switches, opts ...TableOption) *Table {
	if sw == nil {
		sw = NewSwitches(nil)
	}
	t := &Table{
		reserved: map[string]struct{}{},
		switches: sw,
		god:      1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Switches returns the switch table.
func (t *Table) Switches() *Switches { return t.switches }

// State returns the loading phase.
func (t *Table) State() LoadState { return t.switches.State() }

// Reserve adds reserved alias names.
func (t *Table) Reserve(names ...string) {
	WithReservedAliases(names...)(t)
}

func (t *Table) isReserved(name string) bool {
	_, ok := t.reserved[name]
	return ok
}

func (t *Table) search(name string) (int, bool) {
	return slices.BinarySearchFunc(t.entries, name, func(e entry, n string) int {
		return cmp.Compare(e.name, n)
	})
}

func (t *Table) insert(name string, d *Descriptor) {
	i, _ := t.search(name)
	t.entries = slices.Insert(t.entries, i, entry{name: name, d: d})
}

// Lookup resolves a name or unique prefix to a command, internal commands
// included. An exact name always wins. A prefix is ambiguous, and resolves
// to nothing, only when it covers entries for different commands. Reserved
// aliases never resolve.
func (t *Table) Lookup(name string) *Descriptor {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || t.isReserved(name) {
		return nil
	}
	i, exact := t.search(name)
	if exact {
		return t.entries[i].d
	}
	var found *Descriptor
	for ; i < len(t.entries) && strings.HasPrefix(t.entries[i].name, name); i++ {
		if found != nil && found != t.entries[i].d {
			return nil
		}
		found = t.entries[i].d
	}
	return found
}

// Find is Lookup without internal commands. Disabled commands are returned;
// callers check Disabled themselves.
func (t *Table) Find(name string) *Descriptor {
	d := t.Lookup(name)
	if d == nil || d.Internal() {
		return nil
	}
	return d
}

// FindExact resolves an exact name or alias. Reserved aliases never
// resolve.
func (t *Table) FindExact(name string) *Descriptor {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || t.isReserved(name) {
		return nil
	}
	if i, ok := t.search(name); ok {
		return t.entries[i].d
	}
	return nil
}

// IsAlias reports whether name is an alias rather than a canonical name.
func (t *Table) IsAlias(name string) bool {
	d := t.FindExact(name)
	return d != nil && d.Name != strings.ToUpper(strings.TrimSpace(name))
}

// Aliases lists the aliases of d in name order.
func (t *Table) Aliases(d *Descriptor) []string {
	var out []string
	for _, e := range t.entries {
		if e.d == d && e.name != d.Name {
			out = append(out, e.name)
		}
	}
	return out
}

// Register adds a builtin command. It is only allowed before any local
// command has been added.
func (t *Table) Register(s Spec) (*Descriptor, error) {
	if t.State() != LoadBuiltin {
		return nil, oops.Code(CodeWrongPhase).
			With("command", s.Name).
			With("state", t.State().String()).
			Errorf("builtin commands must be registered before local commands")
	}
	if s.Handler == nil {
		return nil, oops.Code(CodeInvalidArgs).With("command", s.Name).Errorf("builtin command %s has no handler", s.Name)
	}
	d, err := t.add(s)
	if err != nil {
		return nil, err
	}
	d.builtin = true
	return d, nil
}

// MustRegister is Register for the builtin table. It panics on error.
func (t *Table) MustRegister(s Spec) *Descriptor {
	d, err := t.Register(s)
	if err != nil {
		panic("failed to register builtin command " + s.Name + ": " + err.Error())
	}
	return d
}

// Add adds a local command. Before Finalize this moves the table into the
// local loading phase. The command fails if its name is invalid or already
// resolves to a command.
func (t *Table) Add(s Spec) (*Descriptor, error) {
	if t.State() == LoadBuiltin {
		t.switches.state = LoadLocal
	}
	return t.add(s)
}

func (t *Table) add(s Spec) (*Descriptor, error) {
	s.Name = strings.ToUpper(strings.TrimSpace(s.Name))
	if err := ValidateCommandName(s.Name); err != nil {
		return nil, err
	}
	if existing := t.Lookup(s.Name); existing != nil {
		return nil, ErrCommandExists(existing.Name)
	}
	d, err := t.newDescriptor(s)
	if err != nil {
		return nil, err
	}
	t.insert(d.Name, d)
	t.logger.Debug("command added", "command", d.Name, "state", t.State().String())
	return d, nil
}

func (t *Table) newDescriptor(s Spec) (*Descriptor, error) {
	types := s.Types
	if types == 0 {
		types = world.TypeAny
	}
	d := &Descriptor{
		Name:        s.Name,
		Types:       types,
		Policy:      s.Policy,
		Disabled:    s.Disabled,
		Logging:     s.Logging,
		Redact:      s.Redact,
		God:         s.God,
		NoGagged:    s.NoGagged,
		NoGuest:     s.NoGuest,
		NoFixed:     s.NoFixed,
		AnySwitch:   s.AnySwitch,
		NOP:         s.NOP,
		Deprecated:  s.Deprecated,
		SwitchNames: strings.Fields(strings.ToUpper(s.Switches)),
		Handler:     s.Handler,
	}
	if s.Internal {
		d.Visibility = Internal
	}

	switch t.State() {
	case LoadDone:
		if mask, ok := t.switches.Mask(d.SwitchNames); ok {
			d.Switches = mask
		}
	default:
		if err := t.switches.declare(d.SwitchNames); err != nil {
			return nil, oops.With("command", d.Name).Wrap(err)
		}
	}

	d.restrictFlags = strings.Fields(strings.ToUpper(s.Flags))
	d.restrictPowers = strings.Fields(strings.ToUpper(s.Powers))
	if err := t.restrictTokens(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Finalize ends command loading: switches declared by local commands join
// the switch table and every command's switch names become a SwitchSet.
// It may be called once.
func (t *Table) Finalize() error {
	if err := t.switches.finalize(); err != nil {
		return err
	}
	for _, d := range t.Commands() {
		mask, ok := t.switches.Mask(d.SwitchNames)
		if !ok {
			return oops.Code(CodeUnknownSwitch).With("command", d.Name).Errorf("command %s has unknown switches", d.Name)
		}
		d.Switches = mask
	}
	t.logger.Debug("command table finalized", "commands", len(t.Commands()), "switches", t.switches.Len())
	return nil
}

// Alias adds alias as another name for the command named name. It fails if
// alias already names a command, if name does not exactly name one, or if
// alias is not a valid command name.
func (t *Table) Alias(name, alias string) bool {
	alias = strings.ToUpper(strings.TrimSpace(alias))
	if ValidateCommandName(alias) != nil || t.FindExact(alias) != nil {
		return false
	}
	d := t.FindExact(name)
	if d == nil {
		return false
	}
	t.insert(alias, d)
	return true
}

// Clone copies the command resolved by original to a new command called
// name, including its switches, lock, restriction message and hooks.
func (t *Table) Clone(original, name string) *Descriptor {
	name = strings.ToUpper(strings.TrimSpace(name))
	src := t.Lookup(original)
	if src == nil || ValidateCommandName(name) != nil || t.Lookup(name) != nil {
		return nil
	}
	d := src.Clone(name)
	t.insert(name, d)
	return d
}

// Delete removes an alias, or a command added at runtime together with all
// of its aliases. Builtin commands cannot be deleted.
func (t *Table) Delete(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	i, ok := t.search(name)
	if !ok {
		return false
	}
	d := t.entries[i].d
	if d.Name != name {
		t.entries = slices.Delete(t.entries, i, i+1)
		return true
	}
	if d.builtin {
		return false
	}
	t.entries = slices.DeleteFunc(t.entries, func(e entry) bool { return e.d == d })
	return true
}

// SetDisabled enables or disables a command. It reports whether the state
// changed.
func (t *Table) SetDisabled(d *Descriptor, disabled bool) bool {
	if d.Disabled == disabled {
		return false
	}
	d.Disabled = disabled
	return true
}

// SetHook sets or, with a nil hook, clears one hook slot.
func (t *Table) SetHook(d *Descriptor, kind HookKind, h *Hook) {
	if h != nil {
		hc := *h
		hc.Attr = strings.ToUpper(hc.Attr)
		h = &hc
	}
	d.Hooks[kind] = h
}

// Commands returns every command once, in name order.
func (t *Table) Commands() []*Descriptor {
	var out []*Descriptor
	for _, e := range t.entries {
		if e.name == e.d.Name {
			out = append(out, e.d)
		}
	}
	return out
}

// ListKind selects which commands List returns.
type ListKind uint8

// List kinds.
const (
	ListAll ListKind = iota
	ListBuiltin
	ListLocal
)

// List returns command names in sorted order. Internal commands are left
// out unless they are marked listed.
func (t *Table) List(kind ListKind) []string {
	var out []string
	for _, d := range t.Commands() {
		if d.Internal() && !d.Listed {
			continue
		}
		switch {
		case kind == ListBuiltin && !d.builtin:
			continue
		case kind == ListLocal && d.builtin:
			continue
		}
		out = append(out, d.Name)
	}
	return out
}
