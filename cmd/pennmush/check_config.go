// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/config"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/game"
	"github.com/holomush/pennmush/internal/world"
	"github.com/holomush/pennmush/internal/xdg"
)

// NewCheckConfigCmd creates the check-config subcommand.
func NewCheckConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config [FILE]",
		Short: "Validate a configuration file and its world",
		Long: `Check a configuration file against the schema, then load the world
fixture it names and apply its command customizations. Nothing is
written and no database is contacted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheckConfig,
	}
	cmd.Flags().String("world", "", "world fixture file (default: from the configuration)")
	return cmd
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	path := configFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = xdg.ConfigFile()
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return oops.Code("CONFIG_NOT_FOUND").With("path", path).Wrap(err)
	}
	if err := config.ValidateYAML(data); err != nil {
		return oops.With("path", path).Wrap(err)
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return oops.With("path", path).Wrap(err)
	}
	cmd.Printf("%s: configuration OK (schema %s)\n", path, cfg.SchemaVersion)

	fix, err := world.LoadFixtureFile(cfg.World)
	if err != nil {
		return err
	}
	g, err := game.New(cfg, fix, game.Options{
		Notifier: command.NotifierFunc(func(context.Context, dbref.Ref, string) {}),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return err
	}
	defer g.Close()

	cmd.Printf("%s: %d objects, %d commands, %d customizations applied\n",
		cfg.World, len(fix.Objects), len(g.Table.Commands()), len(cfg.Commands))
	return nil
}
