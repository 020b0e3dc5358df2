// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pennmush/internal/config"
)

const defaultSchemaPath = "schemas/config.schema.json"

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write the JSON schema of the configuration file",
		Long: `Generate the JSON schema that check-config validates against. Editors
can use it to complete and check pennmush.yaml. Use --output - to print
it instead of writing a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeSchema(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", defaultSchemaPath, `file to write, or "-" for standard output`)

	return cmd
}

func writeSchema(cmd *cobra.Command, output string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}
	if output == "-" {
		_, err := cmd.OutOrStdout().Write(append(schema, '\n'))
		return oops.Code("SCHEMA_WRITE_FAILED").Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", output).Wrap(err)
	}
	if err := os.WriteFile(output, schema, 0o600); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("path", output).Wrap(err)
	}
	cmd.Printf("Wrote configuration schema to %s\n", output)
	return nil
}
