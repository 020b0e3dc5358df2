// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
)

// CustomizationKind names a change to the command table made after the
// builtin commands were registered.
type CustomizationKind string

// Customization kinds.
const (
	CustomAdd      CustomizationKind = "add"
	CustomAlias    CustomizationKind = "alias"
	CustomClone    CustomizationKind = "clone"
	CustomDelete   CustomizationKind = "delete"
	CustomRestrict CustomizationKind = "restrict"
	CustomEnable   CustomizationKind = "enable"
	CustomDisable  CustomizationKind = "disable"
	CustomHook     CustomizationKind = "hook"
)

// Customization is one change to the command table. Customizations come
// from the configuration file and from @command and @hook, and are
// replayed in order at startup.
type Customization struct {
	Kind    CustomizationKind `json:"kind" yaml:"kind" koanf:"kind" jsonschema:"enum=add,enum=alias,enum=clone,enum=delete,enum=restrict,enum=enable,enum=disable,enum=hook"`
	Command string            `json:"command" yaml:"command" koanf:"command" jsonschema:"minLength=1"`
	// Arg is the alias or clone name, the restriction, or the hook
	// target as "#obj/ATTR". An empty hook target clears the hook.
	Arg string `json:"arg,omitempty" yaml:"arg,omitempty" koanf:"arg"`
	// Switches and Policy apply to add.
	Switches string      `json:"switches,omitempty" yaml:"switches,omitempty" koanf:"switches"`
	Policy   ParsePolicy `json:"policy,omitzero" yaml:"policy,omitempty" koanf:"policy"`
	// Hook and Inplace apply to hook.
	Hook    string `json:"hook,omitempty" yaml:"hook,omitempty" koanf:"hook" jsonschema:"enum=,enum=before,enum=after,enum=ignore,enum=override,enum=extend"`
	Inplace bool   `json:"inplace,omitempty" yaml:"inplace,omitempty" koanf:"inplace"`
}

// CustomizationRecorder persists customizations made while the game runs.
type CustomizationRecorder interface {
	RecordCustomization(ctx context.Context, c Customization) error
}

// ParseHook parses a hook target of the form "#obj" or "#obj/ATTR".
func ParseHook(s string) (*Hook, error) {
	obj, attr, _ := strings.Cut(strings.TrimSpace(s), "/")
	ref, err := dbref.Parse(obj)
	if err != nil {
		return nil, oops.Code(CodeInvalidArgs).
			With("hook", s).
			With("message", "Invalid hook object.").
			Errorf("invalid hook object %q", obj)
	}
	return &Hook{Obj: ref, Attr: strings.ToUpper(strings.TrimSpace(attr))}, nil
}

// Apply makes one customization.
func (t *Table) Apply(c Customization) error {
	fail := func(format string, args ...any) error {
		return oops.Code(CodeInvalidArgs).
			With("kind", string(c.Kind)).
			With("command", c.Command).
			Errorf(format, args...)
	}

	if c.Kind == CustomAdd {
		_, err := t.Add(Spec{Name: c.Command, Switches: c.Switches, Policy: c.Policy})
		return err
	}
	d := t.FindExact(c.Command)
	if d == nil && c.Kind != CustomAlias && c.Kind != CustomClone {
		return ErrUnknownCommand(c.Command)
	}

	switch c.Kind {
	case CustomAlias:
		if !t.Alias(c.Command, c.Arg) {
			return fail("cannot alias %s to %s", c.Command, c.Arg)
		}
	case CustomClone:
		if t.Clone(c.Command, c.Arg) == nil {
			return fail("cannot clone %s to %s", c.Command, c.Arg)
		}
	case CustomDelete:
		if !t.Delete(c.Command) {
			return fail("cannot delete %s", c.Command)
		}
	case CustomRestrict:
		return t.Restrict(d, c.Arg)
	case CustomEnable:
		t.SetDisabled(d, false)
	case CustomDisable:
		t.SetDisabled(d, true)
	case CustomHook:
		kind, ok := ParseHookKind(c.Hook)
		if !ok {
			return fail("unknown hook %q", c.Hook)
		}
		if strings.TrimSpace(c.Arg) == "" {
			t.SetHook(d, kind, nil)
			return nil
		}
		h, err := ParseHook(c.Arg)
		if err != nil {
			return err
		}
		h.Inplace = c.Inplace
		t.SetHook(d, kind, h)
	default:
		return fail("unknown customization %q", c.Kind)
	}
	return nil
}

// ApplyAll makes each customization in order. It stops at the first
// failure.
func (t *Table) ApplyAll(cs []Customization) error {
	for i, c := range cs {
		if err := t.Apply(c); err != nil {
			return oops.With("index", i).Wrap(err)
		}
	}
	return nil
}
