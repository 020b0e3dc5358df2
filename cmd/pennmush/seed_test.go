// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/pennmush/pkg/errutil"
)

func TestSeedCmd_Flags(t *testing.T) {
	cmd := NewSeedCmd()

	timeout, err := cmd.Flags().GetDuration("timeout")
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
	assert.NotNil(t, cmd.Flags().Lookup("database-url"))
	assert.NotNil(t, cmd.Flags().Lookup("world"))
}

func TestSeedCmd_RequiresDatabaseURL(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "seed")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestSeedCmd_BadWorld(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "", "seed", "--database-url", "postgres://db/mush", "--world", dir+"/nowhere.yaml")
	errutil.AssertErrorCode(t, err, "FIXTURE_READ_FAILED")
}
