// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package dbref defines the object reference type shared by every part of
// the command core.
package dbref

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Ref identifies a game object (room, player, thing, or exit).
type Ref int

// Sentinel references.
const (
	Nothing   Ref = -1
	Ambiguous Ref = -2
	Home      Ref = -3
)

// String renders the reference in "#n" form.
func (r Ref) String() string {
	return "#" + strconv.Itoa(int(r))
}

// Parse reads a "#n" reference. A bare number is accepted as well.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(s, "#")
	if digits == "" {
		return Nothing, oops.Code("INVALID_DBREF").With("input", s).Errorf("empty object reference")
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return Nothing, oops.Code("INVALID_DBREF").With("input", s).Errorf("invalid object reference %q", s)
	}
	return Ref(n), nil
}

// IsDbref reports whether s has the "#n" shape.
func IsDbref(s string) bool {
	if len(s) < 2 || s[0] != '#' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
