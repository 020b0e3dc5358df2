// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"log/slog"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// SwitchNames is the builtin switch table. Every switch a builtin command
// declares must be listed here.
var SwitchNames = []string{
	"ADD", "AFTER", "ALIAS", "BEFORE", "CLONE", "DELETE", "DISABLE",
	"ENABLE", "EQSPLIT", "EXTEND", "IGNORE", "INPLACE", "LIST", "LSARGS",
	"NOPARSE", "NOSPACE", "OFF", "ON", "OVERRIDE", "QUIET", "RESTRICT",
	"ROOM", "RSARGS", "RSNOPARSE",
}

// Channels delivers @chat messages.
type Channels interface {
	Send(ctx context.Context, speaker dbref.Ref, channel, msg string) error
}

// Builtins holds what the stateful builtin commands need.
type Builtins struct {
	recorder command.CustomizationRecorder
	channels Channels
	logger   *slog.Logger
}

// Option configures the builtin commands.
type Option func(*Builtins)

// WithRecorder persists changes made by @command and @hook.
func WithRecorder(r command.CustomizationRecorder) Option {
	return func(b *Builtins) { b.recorder = r }
}

// WithChannels enables @chat.
func WithChannels(c Channels) Option {
	return func(b *Builtins) { b.channels = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builtins) {
		if l != nil {
			b.logger = l
		}
	}
}

// RegisterAll registers the builtin commands. The table must be in the
// builtin phase. Panics if any registration fails (indicates a programming
// error).
func RegisterAll(t *command.Table, opts ...Option) {
	b := &Builtins{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	mobile := world.TypePlayer | world.TypeThing

	// Speech
	t.MustRegister(command.Spec{Name: "SAY", Switches: "NOEVAL", Handler: SayHandler, NoGagged: true})
	t.MustRegister(command.Spec{Name: "POSE", Switches: "NOEVAL NOSPACE", Handler: PoseHandler, NoGagged: true})
	t.MustRegister(command.Spec{Name: "SEMIPOSE", Switches: "NOEVAL", Handler: SemiposeHandler, NoGagged: true})
	t.MustRegister(command.Spec{Name: "@EMIT", Switches: "NOEVAL", Handler: EmitHandler, NoGagged: true})
	t.MustRegister(command.Spec{
		Name:     "@PEMIT",
		Switches: "NOEVAL",
		Handler:  PemitHandler,
		Policy:   command.ParsePolicy{EqSplit: true},
		NoGagged: true,
	})
	t.MustRegister(command.Spec{Name: "THINK", Switches: "NOEVAL", Handler: ThinkHandler})
	t.MustRegister(command.Spec{
		Name:     "@CHAT",
		Handler:  b.chat,
		Policy:   command.ParsePolicy{EqSplit: true},
		NoGagged: true,
	})

	// Looking and moving
	t.MustRegister(command.Spec{Name: "LOOK", Handler: LookHandler})
	t.MustRegister(command.Spec{Name: "GOTO", Handler: GotoHandler, Types: mobile})
	t.MustRegister(command.Spec{Name: "HOME", Handler: HomeHandler, Types: mobile})
	t.MustRegister(command.Spec{Name: "ENTER", Handler: EnterHandler, Types: mobile})
	t.MustRegister(command.Spec{Name: "LEAVE", Handler: LeaveHandler, Types: mobile})

	// Building
	t.MustRegister(command.Spec{
		Name:     "@SET",
		Switches: "QUIET",
		Handler:  SetHandler,
		Policy:   command.ParsePolicy{EqSplit: true},
		NoGagged: true,
	})
	t.MustRegister(command.Spec{
		Name:     "ATTRIB_SET",
		Switches: "QUIET",
		Handler:  AttribSetHandler,
		Policy:   command.ParsePolicy{EqSplit: true},
		Internal: true,
		NoGagged: true,
	})
	t.MustRegister(command.Spec{
		Name:     "@FORCE",
		Switches: "NOEVAL INPLACE",
		Handler:  ForceHandler,
		Policy:   command.ParsePolicy{EqSplit: true, RSNoParse: true, RSBrace: true},
	})
	t.MustRegister(command.Spec{
		Name:     "WITH",
		Switches: "ROOM",
		Handler:  WithHandler,
		Policy:   command.ParsePolicy{EqSplit: true, RSNoParse: true},
	})

	// Command table administration
	t.MustRegister(command.Spec{
		Name: "@COMMAND",
		Switches: "ADD ALIAS CLONE DELETE ON OFF ENABLE DISABLE RESTRICT QUIET " +
			"EQSPLIT LSARGS RSARGS NOPARSE RSNOPARSE NOEVAL LIST",
		Handler: b.command,
		Policy:  command.ParsePolicy{EqSplit: true},
	})
	t.MustRegister(command.Spec{
		Name:     "@HOOK",
		Switches: "BEFORE AFTER IGNORE OVERRIDE EXTEND INPLACE LIST",
		Handler:  b.hook,
		Policy:   command.ParsePolicy{EqSplit: true, RSArgs: true},
		Flags:    "WIZARD",
	})

	// Internal commands
	internal := command.ParsePolicy{NoParse: true}
	t.MustRegister(command.Spec{Name: "HUH_COMMAND", Handler: HuhHandler, Internal: true, NOP: true, Policy: internal})
	t.MustRegister(command.Spec{Name: "WARN_ON_MISSING", Handler: WarnOnMissingHandler, Internal: true, NOP: true, Policy: internal})
	t.MustRegister(command.Spec{Name: "UNIMPLEMENTED_COMMAND", Handler: UnimplementedHandler, Internal: true, NOP: true, Policy: internal})
}

// NewTable returns a table in the builtin phase holding the builtin
// commands. Callers add local commands and then call Finalize.
func NewTable(tableOpts []command.TableOption, opts ...Option) *command.Table {
	t := command.NewTable(command.NewSwitches(SwitchNames), tableOpts...)
	RegisterAll(t, opts...)
	return t
}
