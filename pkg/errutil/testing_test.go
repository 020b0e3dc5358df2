// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/pennmush/pkg/errutil"
)

// recorder is a TB that remembers failures instead of failing the test.
type recorder struct {
	failed bool
	msgs   []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.failed = true
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func (r *recorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}

func (r *recorder) Helper() {}

// run calls fn with a recorder on its own goroutine so FailNow can exit it.
func run(fn func(errutil.TB)) *recorder {
	r := &recorder{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(r)
	}()
	wg.Wait()
	return r
}

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorCode_WrappedReportsInnerCode(t *testing.T) {
	inner := oops.Code("INVALID_DBREF").Errorf("bad ref")
	err := oops.With("actor", "#x").Wrap(inner)
	errutil.AssertErrorCode(t, err, "INVALID_DBREF")
}

func TestAssertErrorCode_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nil error", nil},
		{"plain error", errors.New("boom")},
		{"other code", oops.Code("OTHER").Errorf("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(func(tb errutil.TB) { errutil.AssertErrorCode(tb, tt.err, "MY_CODE") })
			assert.True(t, r.failed)
		})
	}
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("source", "config").Errorf("test error")
	errutil.AssertErrorContext(t, err, "source", "config")
}

func TestAssertErrorContext_Failures(t *testing.T) {
	err := oops.With("source", "config").Errorf("test error")

	r := run(func(tb errutil.TB) { errutil.AssertErrorContext(tb, err, "source", "database") })
	assert.True(t, r.failed)

	r = run(func(tb errutil.TB) { errutil.AssertErrorContext(tb, err, "command", "LOOK") })
	assert.True(t, r.failed)
}
