// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pennmush/internal/store"
)

// migrator is the part of store.Migrator the migrate command uses.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

// newMigrator opens a migrator. Tests replace it.
var newMigrator = func(databaseURL string) (migrator, error) {
	return store.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate command and its subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back and inspect the PostgreSQL schema migrations.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL URL (default: DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			cmd.Println("Running migrations...")
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Rolled back all migrations")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if dirty {
				cmd.Printf("Version %d (dirty)\n", v)
				return nil
			}
			cmd.Printf("Version %d\n", v)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List migrations not yet applied",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, _ []string) error {
			pending, err := m.Pending()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				cmd.Println("No pending migrations")
				return nil
			}
			for _, v := range pending {
				name, nameErr := store.MigrationName(v)
				if nameErr != nil || name == "" {
					name = strconv.FormatUint(uint64(v), 10)
				}
				cmd.Println(name)
			}
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Set the recorded schema version and clear the dirty flag. Use this to
recover after a migration failed part way through.`,
		Args: cobra.ExactArgs(1),
		RunE: withMigrator(func(cmd *cobra.Command, m migrator, args []string) error {
			v, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			if err := m.Force(v); err != nil {
				return err
			}
			cmd.Printf("Forced version %d\n", v)
			return nil
		}),
	})

	return cmd
}

// withMigrator opens a migrator for the configured database around fn.
func withMigrator(fn func(*cobra.Command, migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("a database URL is required (database.url, --database-url or DATABASE_URL)")
		}
		m, err := newMigrator(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := m.Close(); closeErr != nil {
				cmd.PrintErrln("warning: closing migrator:", closeErr)
			}
		}()
		return fn(cmd, m, args)
	}
}

// parseForceVersion parses the force subcommand's version argument.
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("version", s).Errorf("version must be an integer, got %q", s)
	}
	return v, nil
}
