// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the pennmush CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pennmush",
		Short: "pennmush - PennMUSH command resolution and dispatch",
		Long: `pennmush runs the PennMUSH command core: builtin and softcode
$commands, hooks, restrictions and the @command table, over a world
loaded from YAML and optionally persisted in PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/pennmush/config.yaml)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewCheckConfigCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// addConfigFlags registers the flags that override configuration keys.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "PostgreSQL URL (default: DATABASE_URL)")
	fs.String("world", "", "world fixture file (default: XDG_DATA_HOME/pennmush/world.yaml)")
	fs.String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (json or text)")
	fs.String("log-file", "", "write logs to this file, rotated")
}
