// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"
	"unicode"

	"github.com/samber/oops"
)

// MaxNameLength is the maximum length of a command or alias name.
const MaxNameLength = 64

// Single-character tokens the dispatcher rewrites before command lookup.
const (
	SayToken      = '"'
	PoseToken     = ':'
	SemiPoseToken = ';'
	EmitToken     = '\\'
	ChatToken     = '+'
	NumberToken   = '#'
	NoEvalToken   = ']'
	DebugToken    = '}'
)

// ValidateCommandName checks a command or alias name. Names are compared
// upper-cased; they may not start with a token character, may not contain
// spaces and must contain at least one letter.
func ValidateCommandName(name string) error {
	name = strings.ToUpper(name)
	if name == "" {
		return oops.Code(CodeInvalidName).Errorf("command name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return oops.Code(CodeInvalidName).
			With("name", name).
			With("max", MaxNameLength).
			Errorf("command name exceeds maximum length of %d", MaxNameLength)
	}

	switch first := rune(name[0]); first {
	case SayToken, PoseToken, SemiPoseToken, EmitToken, NoEvalToken, NumberToken, DebugToken, '&', '[':
		return oops.Code(CodeInvalidName).With("name", name).Errorf("command name cannot start with %q", first)
	default:
		if !unicode.IsUpper(first) && !unicode.IsDigit(first) && !unicode.IsPunct(first) && !unicode.IsSymbol(first) {
			return oops.Code(CodeInvalidName).With("name", name).Errorf("command name must start with a letter, digit or punctuation")
		}
	}

	letters := 0
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return oops.Code(CodeInvalidName).With("name", name).Errorf("command name must be printable and contain no spaces")
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	if letters == 0 {
		return oops.Code(CodeInvalidName).With("name", name).Errorf("command name must contain a letter")
	}
	return nil
}
