// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SchemaID, doc["$id"])
	assert.Equal(t, []any{"schema_version"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"schema_version", "log", "database", "metrics_addr", "world", "game", "commands"} {
		assert.Contains(t, props, key)
	}
}

func TestValidateYAML(t *testing.T) {
	require.NoError(t, ValidateYAML([]byte(sampleConfig)))

	tests := []struct {
		name string
		doc  string
		code string
	}{
		{"empty", "", "CONFIG_EMPTY"},
		{"not yaml", "game: [", "CONFIG_INVALID_YAML"},
		{"missing version", "world: w.yaml\n", "CONFIG_SCHEMA_VIOLATION"},
		{"unknown key", "schema_version: 1.0.0\nwrld: w.yaml\n", "CONFIG_SCHEMA_VIOLATION"},
		{"wrong type", "schema_version: 1.0.0\ngame:\n  hook_depth: deep\n", "CONFIG_SCHEMA_VIOLATION"},
		{"negative limit", "schema_version: 1.0.0\ngame:\n  queue_limit: -1\n", "CONFIG_SCHEMA_VIOLATION"},
		{"bad customization kind", "schema_version: 1.0.0\ncommands:\n  - {kind: rename, command: LOOK}\n", "CONFIG_SCHEMA_VIOLATION"},
		{"bad log format", "schema_version: 1.0.0\nlog:\n  format: xml\n", "CONFIG_SCHEMA_VIOLATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errutil.AssertErrorCode(t, ValidateYAML([]byte(tt.doc)), tt.code)
		})
	}
}
