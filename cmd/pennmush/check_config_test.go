// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/pkg/errutil"
)

func TestCheckConfig_Valid(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeGameConfig(t, dir, "commands:\n  - {kind: alias, command: THINK, arg: PONDER}\n")

	out, _, err := execute(t, "", "check-config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration OK (schema 1.0.0)")
	assert.Contains(t, out, "4 objects")
	assert.Contains(t, out, "1 customizations applied")
}

func TestCheckConfig_UsesConfigFlag(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeGameConfig(t, dir, "")

	out, _, err := execute(t, "", "--config", cfgPath, "check-config")
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath+": configuration OK")
}

func TestCheckConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		code  string
	}{
		{"unknown key", "colour: blue\n", "CONFIG_SCHEMA_VIOLATION"},
		{"unsupported version", "", "CONFIG_UNSUPPORTED_VERSION"},
		{"customization that does not apply", "commands:\n  - {kind: disable, command: XYZZY}\n", command.CodeUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			cfgPath := writeGameConfig(t, dir, tt.extra)
			if tt.code == "CONFIG_UNSUPPORTED_VERSION" {
				cfgPath = writeFile(t, dir, "config.yaml", "schema_version: 2.0.0\n")
			}
			_, _, err := execute(t, "", "check-config", cfgPath)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		dir := isolate(t)
		_, _, err := execute(t, "", "check-config", dir+"/none.yaml")
		errutil.AssertErrorCode(t, err, "CONFIG_NOT_FOUND")
	})
}
