// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package game assembles a command core from configuration: the world
// graph, attributes, locks, the command table and the dispatcher.
package game

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/command/handlers"
	"github.com/holomush/pennmush/internal/config"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/lock"
	"github.com/holomush/pennmush/internal/pattern"
	"github.com/holomush/pennmush/internal/world"
)

// Options are the collaborators that live outside the game.
type Options struct {
	// Notifier delivers messages to objects. Required.
	Notifier command.Notifier
	// Observer sees every attribute change, typically a store.Journal.
	Observer attribute.Observer
	// Recorder persists @command and @hook changes.
	Recorder command.CustomizationRecorder
	// Saved are customizations recorded by earlier runs. They are applied
	// after the ones in the configuration.
	Saved []command.Customization
	// Registerer receives the rate limiter gauge.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// Game is a loaded world with a dispatcher ready to run commands.
type Game struct {
	Graph      *world.MemGraph
	Attrs      *attribute.Store
	Locks      *lock.Registry
	Table      *command.Table
	Channels   *handlers.ChannelList
	Dispatcher *command.Dispatcher

	limiter *command.RateLimiter
}

// New builds a game over the world described by fix.
func New(cfg *config.Config, fix *world.Fixture, opts Options) (*Game, error) {
	if opts.Notifier == nil {
		return nil, oops.Code("GAME_INVALID").Errorf("notifier is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	graph, err := fix.Build()
	if err != nil {
		return nil, oops.With("operation", "build world").Wrap(err)
	}

	attrOpts := []attribute.Option{
		attribute.WithMatcher(pattern.New(pattern.WithCacheSize(cfg.Game.PatternCache), pattern.WithLogger(logger))),
		attribute.WithLimits(cfg.Game.Attributes),
		attribute.WithLogger(logger),
	}
	if opts.Observer != nil {
		attrOpts = append(attrOpts, attribute.WithObserver(opts.Observer))
	}
	attrs := attribute.NewStore(graph, attrOpts...)
	if err := attrs.LoadFixture(fix); err != nil {
		return nil, err
	}
	locks := lock.NewRegistry()
	if err := locks.LoadFixture(fix); err != nil {
		return nil, err
	}

	channels := handlers.NewChannelList(opts.Notifier, graph.Name)
	for _, ch := range cfg.Game.Channels {
		for _, who := range ch.Members {
			channels.Join(ch.Name, who)
		}
	}

	tableOpts := []command.TableOption{
		command.WithGod(graph.God()),
		command.WithReservedAliases(cfg.Game.ReservedAliases...),
		command.WithTableLogger(logger),
	}
	builtinOpts := []handlers.Option{handlers.WithChannels(channels), handlers.WithLogger(logger)}
	if opts.Recorder != nil {
		builtinOpts = append(builtinOpts, handlers.WithRecorder(opts.Recorder))
	}
	table := handlers.NewTable(tableOpts, builtinOpts...)
	if err := table.ApplyAll(cfg.Commands); err != nil {
		return nil, oops.With("source", "config").Wrap(err)
	}
	if err := table.Finalize(); err != nil {
		return nil, err
	}
	// Saved changes may name switches added by the configured commands, so
	// they replay once the switch table is complete.
	if err := table.ApplyAll(opts.Saved); err != nil {
		return nil, oops.With("source", "database").Wrap(err)
	}

	g := &Game{Graph: graph, Attrs: attrs, Locks: locks, Table: table, Channels: channels}

	dispOpts := []command.DispatcherOption{
		command.WithNotifier(opts.Notifier),
		command.WithLockRegistry(locks),
		command.WithChannelMatcher(channels),
		command.WithQueue(command.NewImmediateQueue(cfg.Game.QueueLimit)),
		command.WithHookDepth(cfg.Game.HookDepth),
		command.WithLogAllCommands(cfg.Game.LogCommands),
		command.WithLogger(logger),
	}
	if cfg.Game.RateLimit.Burst > 0 {
		rlc := command.RateLimiterConfig{
			BurstCapacity: cfg.Game.RateLimit.Burst,
			SustainedRate: cfg.Game.RateLimit.PerSecond,
		}
		if opts.Registerer != nil {
			g.limiter = command.NewRateLimiterWithRegistry(rlc, opts.Registerer)
		} else {
			g.limiter = command.NewRateLimiter(rlc)
		}
		dispOpts = append(dispOpts, command.WithRateLimiter(g.limiter))
	}

	g.Dispatcher, err = command.NewDispatcher(table, graph, attrs, dispOpts...)
	if err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Run dispatches one line typed by actor.
func (g *Game) Run(ctx context.Context, actor dbref.Ref, line string) command.Outcome {
	return g.Dispatcher.Process(ctx, command.NewSocketRequest(actor, line))
}

// Close stops the rate limiter.
func (g *Game) Close() {
	if g.limiter != nil {
		g.limiter.Close()
	}
}
