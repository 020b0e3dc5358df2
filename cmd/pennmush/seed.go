// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/store"
	"github.com/holomush/pennmush/internal/world"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the world fixture's attributes in the database",
		Long: `Runs pending migrations, then stores every attribute set by the world
fixture. This command is idempotent - attributes already in the database
are left unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database-url", "", "PostgreSQL URL (default: DATABASE_URL)")
	cmd.Flags().String("world", "", "world fixture file (default: XDG_DATA_HOME/pennmush/world.yaml)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, sc *seedConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a database URL is required (database.url, --database-url or DATABASE_URL)")
	}

	fix, err := world.LoadFixtureFile(cfg.World)
	if err != nil {
		return err
	}
	graph, err := fix.Build()
	if err != nil {
		return err
	}
	attrs := attribute.NewStore(graph, attribute.WithLimits(cfg.Game.Attributes))
	if err := attrs.LoadFixture(fix); err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	opts := store.DefaultConnectOptions()
	if cfg.Database.ConnectAttempts > 0 {
		opts.Attempts = cfg.Database.ConnectAttempts
	}
	pool, err := store.Connect(ctx, cfg.Database.URL, opts)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	m, err := newMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	upErr := m.Up()
	if closeErr := m.Close(); closeErr != nil {
		cmd.PrintErrln("warning: closing migrator:", closeErr)
	}
	if upErr != nil {
		return upErr
	}

	created, skipped, err := store.NewPostgresAttributeRepository(pool).Seed(ctx, attrs)
	if err != nil {
		return oops.Code("SEED_FAILED").With("created", created).Wrap(err)
	}
	if created == 0 {
		cmd.Printf("All %d attributes already stored, nothing to seed\n", skipped)
		return nil
	}
	cmd.Printf("Seeded %d attributes (%d already stored)\n", created, skipped)
	return nil
}
