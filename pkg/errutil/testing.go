// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TB is the part of testing.TB the assertions use. Ginkgo's GinkgoT()
// satisfies it too.
type TB interface {
	require.TestingT
	Helper()
}

// AssertErrorCode asserts that err is an oops error whose code is code.
// Wrapped errors report the innermost code.
func AssertErrorCode(t TB, err error, code string) {
	t.Helper()
	require.Error(t, err, "expected an error with code %s", code)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	assert.Equal(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertErrorContext asserts that key is set to value somewhere in err's
// oops chain.
func AssertErrorContext(t TB, err error, key string, value any) {
	t.Helper()
	require.Error(t, err, "expected an error with %s=%v", key, value)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T: %v", err, err)
	ctx := oopsErr.Context()
	if assert.Contains(t, ctx, key, "error: %v", err) {
		assert.Equal(t, value, ctx[key])
	}
}
