// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg locates pennmush's files under the XDG base directories.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "pennmush"

func base(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(append(append([]string{os.Getenv("HOME")}, fallback...), appName)...)
}

// ConfigDir is $XDG_CONFIG_HOME/pennmush, or ~/.config/pennmush.
func ConfigDir() string { return base("XDG_CONFIG_HOME", ".config") }

// DataDir is $XDG_DATA_HOME/pennmush, or ~/.local/share/pennmush.
func DataDir() string { return base("XDG_DATA_HOME", ".local", "share") }

// StateDir is $XDG_STATE_HOME/pennmush, or ~/.local/state/pennmush.
func StateDir() string { return base("XDG_STATE_HOME", ".local", "state") }

// ConfigFile is the default configuration file.
func ConfigFile() string { return filepath.Join(ConfigDir(), "config.yaml") }

// WorldFile is the default world fixture.
func WorldFile() string { return filepath.Join(DataDir(), "world.yaml") }

// LogFile is the default log file when logging to disk.
func LogFile() string { return filepath.Join(StateDir(), "pennmush.log") }

// EnsureDir creates path and its parents with mode 0700.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("DIR_CREATE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
