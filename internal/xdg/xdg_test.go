// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		dir      func() string
		fallback string
	}{
		{"config", "XDG_CONFIG_HOME", ConfigDir, ".config"},
		{"data", "XDG_DATA_HOME", DataDir, filepath.Join(".local", "share")},
		{"state", "XDG_STATE_HOME", StateDir, filepath.Join(".local", "state")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", "/home/wiz")
			t.Setenv(tt.env, "/xdg")
			assert.Equal(t, "/xdg/pennmush", tt.dir())

			t.Setenv(tt.env, "")
			assert.Equal(t, filepath.Join("/home/wiz", tt.fallback, "pennmush"), tt.dir())
		})
	}
}

func TestFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/c")
	t.Setenv("XDG_DATA_HOME", "/d")
	t.Setenv("XDG_STATE_HOME", "/s")

	assert.Equal(t, "/c/pennmush/config.yaml", ConfigFile())
	assert.Equal(t, "/d/pennmush/world.yaml", WorldFile())
	assert.Equal(t, "/s/pennmush/pennmush.log", LogFile())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir), "existing directories are fine")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}
