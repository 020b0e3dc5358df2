// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command resolves a line of input from a game object to a built-in
// command or to $command attributes on nearby objects, and runs it.
//
// The Table holds command descriptors under their canonical names and
// aliases. The Dispatcher turns input into an Invocation: it applies the
// single-character tokens, evaluates the command word, checks the command's
// lock, splits the arguments according to the descriptor's ParsePolicy and
// runs the hooks and handler. Input that names no enabled command is matched
// against $command patterns in a fixed cascade of places.
package command

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/world"
)

// MaxArgs is the number of positional arguments a side can be split into.
const MaxArgs = 10

// Handler runs a command.
type Handler func(ctx context.Context, inv *Invocation) error

// Visibility says who can reach a command by name.
type Visibility uint8

// Visibility values.
const (
	// Normal commands are found by name.
	Normal Visibility = iota
	// Internal commands are only run by the dispatcher itself.
	Internal
)

// Logging selects what is logged after a command runs.
type Logging uint8

// Logging values.
const (
	LogNone Logging = iota
	// LogArgs logs the canonical command with its arguments.
	LogArgs
	// LogName logs only the command name.
	LogName
)

// Redaction hides secrets when a command's arguments are logged.
type Redaction uint8

// Redaction values.
const (
	RedactNone Redaction = iota
	// RedactBoth logs "NAME ***=***".
	RedactBoth
	// RedactRight logs "NAME left=***".
	RedactRight
)

// ParsePolicy controls how the text after the command word is split and
// evaluated.
type ParsePolicy struct {
	// NoParse passes the left side (or the whole text) through literally.
	NoParse bool `json:"noparse,omitempty" yaml:"noparse,omitempty" koanf:"noparse"`
	// RSNoParse passes the right side through literally.
	RSNoParse bool `json:"rsnoparse,omitempty" yaml:"rsnoparse,omitempty" koanf:"rsnoparse"`
	// RSBrace strips command braces from a literal right side.
	RSBrace bool `json:"rsbrace,omitempty" yaml:"rsbrace,omitempty" koanf:"rsbrace"`
	// EqSplit splits the text on the first unescaped '='.
	EqSplit bool `json:"eqsplit,omitempty" yaml:"eqsplit,omitempty" koanf:"eqsplit"`
	// LSArgs and RSArgs split a side into positional arguments.
	LSArgs bool `json:"lsargs,omitempty" yaml:"lsargs,omitempty" koanf:"lsargs"`
	RSArgs bool `json:"rsargs,omitempty" yaml:"rsargs,omitempty" koanf:"rsargs"`
	// LSSpace and RSSpace split arguments on spaces instead of commas.
	LSSpace bool `json:"lsspace,omitempty" yaml:"lsspace,omitempty" koanf:"lsspace"`
	RSSpace bool `json:"rsspace,omitempty" yaml:"rsspace,omitempty" koanf:"rsspace"`
}

// HookKind names one of a command's hook slots.
type HookKind uint8

// Hook slots.
const (
	HookBefore HookKind = iota
	HookAfter
	HookIgnore
	HookOverride
	HookExtend
	hookCount
)

var hookNames = [hookCount]string{"before", "after", "ignore", "override", "extend"}

func (k HookKind) String() string {
	if k < hookCount {
		return hookNames[k]
	}
	return "unknown"
}

// ParseHookKind converts a hook name such as "before" to a HookKind.
func ParseHookKind(name string) (HookKind, bool) {
	for i, n := range hookNames {
		if strings.EqualFold(n, name) {
			return HookKind(i), true
		}
	}
	return 0, false
}

// Hook points a command's hook slot at an attribute on an object. For
// before, after and ignore hooks the attribute is evaluated; for override
// and extend hooks it is matched as a $command. An empty Attr on an
// override or extend hook matches every $command on Obj.
type Hook struct {
	Obj     dbref.Ref
	Attr    string
	Inplace bool
}

// String renders the hook as "#obj/ATTR", or "#obj" when it has no
// attribute.
func (h *Hook) String() string {
	if h.Attr == "" {
		return h.Obj.String()
	}
	return h.Obj.String() + "/" + h.Attr
}

// Descriptor is one command in the Table.
type Descriptor struct {
	Name       string
	Types      world.Type
	Policy     ParsePolicy
	Visibility Visibility
	Disabled   bool
	Logging    Logging
	Redact     Redaction

	God      bool
	NoGagged bool
	NoGuest  bool
	NoFixed  bool

	// AnySwitch accepts unknown switches and hands them to the handler.
	AnySwitch bool
	// NOP commands do nothing themselves and exist to be overridden.
	NOP        bool
	Deprecated bool
	Listed     bool

	// SwitchNames are the declared switches. They become Switches when the
	// table is finalized.
	SwitchNames []string
	Switches    SwitchSet

	// Lock decides who may run the command. It is the only permission
	// check; the type and restriction fields above are the inputs it was
	// built from.
	Lock            *lock.Lock
	RestrictMessage string
	// restrictFlags and restrictPowers are the names a token restriction
	// was built from; exprLock marks a lock given as an expression.
	restrictFlags  []string
	restrictPowers []string
	exprLock       bool

	// Hooks are nil when unset.
	Hooks   [hookCount]*Hook
	Handler Handler
	builtin bool
}

// Builtin reports whether the command has a real handler, as opposed to one
// added by @command/add. Clones of builtin commands are builtin.
func (d *Descriptor) Builtin() bool { return d.builtin }

// Internal reports whether the command is hidden from name lookup.
func (d *Descriptor) Internal() bool { return d.Visibility == Internal }

// Hook returns the hook in slot k, or nil.
func (d *Descriptor) Hook(k HookKind) *Hook { return d.Hooks[k] }

// Clone returns a deep copy of the descriptor under a new name.
func (d *Descriptor) Clone(name string) *Descriptor {
	c := *d
	c.Name = name
	c.SwitchNames = append([]string(nil), d.SwitchNames...)
	c.Switches = d.Switches.Clone()
	c.Lock = d.Lock.Clone()
	c.restrictFlags = append([]string(nil), d.restrictFlags...)
	c.restrictPowers = append([]string(nil), d.restrictPowers...)
	for i, h := range d.Hooks {
		if h != nil {
			hc := *h
			c.Hooks[i] = &hc
		}
	}
	return &c
}

// Invocation is one run of a command.
type Invocation struct {
	// ID identifies the dispatch the invocation belongs to.
	ID      ulid.ULID
	Command *Descriptor

	Executor dbref.Ref
	Enactor  dbref.Ref
	Caller   dbref.Ref

	Switches SwitchSet
	// Extra holds the unknown switches of an AnySwitch command, or the
	// attribute name for ATTRIB_SET.
	Extra string

	// Raw is the input as received; Evaled is the canonical command with
	// evaluated arguments; Args is the unevaluated text after the command.
	Raw    string
	Evaled string
	Args   string

	Left       string
	LeftArgs   []string
	Right      string
	RightArgs  []string
	RHSPresent bool

	// FromSocket is set for input typed directly by a connected player.
	FromSocket bool
	Depth      int

	d *Dispatcher
}

// Dispatcher returns the dispatcher running the invocation.
func (inv *Invocation) Dispatcher() *Dispatcher { return inv.d }

// Has reports whether switch name was given.
func (inv *Invocation) Has(name string) bool {
	return inv.d.table.switches.Has(inv.Switches, name)
}

// Notify sends a message to the executor.
func (inv *Invocation) Notify(ctx context.Context, msg string) {
	inv.d.notify.Notify(ctx, inv.Executor, msg)
}

// Env returns the evaluation environment of the invocation.
func (inv *Invocation) Env() *EvalEnv {
	return &EvalEnv{Executor: inv.Executor, Caller: inv.Caller, Enactor: inv.Enactor}
}
