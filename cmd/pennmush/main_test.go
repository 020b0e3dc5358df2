// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorld = `
god: 1
master_room: 2
objects:
  - {ref: 0, name: Lobby, type: room}
  - {ref: 1, name: One, type: player, location: 0, flags: [WIZARD]}
  - {ref: 2, name: Master Room, type: room}
  - ref: 3
    name: Alice
    type: player
    location: 0
    attributes:
      - {name: GREETING, value: "hello"}
`

// isolate points the XDG directories at a temporary directory and clears
// DATABASE_URL.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("DATABASE_URL", "")
	return dir
}

// writeFile writes body to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// writeGameConfig writes a world and a configuration naming it.
func writeGameConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	world := writeFile(t, dir, "world.yaml", testWorld)
	return writeFile(t, dir, "config.yaml",
		"schema_version: 1.0.0\nworld: "+world+"\nlog:\n  format: text\n  level: warn\n"+extra)
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	configFile = ""

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)

	for _, sub := range []string{"run", "migrate", "seed", "check-config", "status", "schema"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "config flag",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/pennmush.yaml", "--help"},
			wantFlag: "/etc/pennmush.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}
