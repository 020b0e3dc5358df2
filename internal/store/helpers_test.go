// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

const (
	god   dbref.Ref = 1
	alice dbref.Ref = 3
	box   dbref.Ref = 4
)

const testWorld = `
god: 1
objects:
  - {ref: 0, name: Lobby, type: room}
  - {ref: 1, name: God, type: player, location: 0}
  - {ref: 3, name: Alice, type: player, location: 0}
  - {ref: 4, name: Box, type: thing, location: 0, owner: 3}
`

func newAttributeStore(t *testing.T, opts ...attribute.Option) *attribute.Store {
	t.Helper()
	f, err := world.LoadFixture(strings.NewReader(testWorld))
	require.NoError(t, err)
	g, err := f.Build()
	require.NoError(t, err)
	return attribute.NewStore(g, opts...)
}
