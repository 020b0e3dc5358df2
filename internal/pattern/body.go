// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pattern

import "strings"

// Kind identifies what an attribute body reacts to.
type Kind byte

// Body kinds, named after their leading character.
const (
	KindCommand Kind = '$'
	KindListen  Kind = '^'
)

// DefaultDelimiter separates the pattern from the code in a body.
const DefaultDelimiter = ':'

// Body is an attribute value of the form <kind><pattern><delimiter><code>.
type Body struct {
	Kind    Kind
	Pattern string
	Code    string
}

// ParseBody splits an attribute value into its pattern and code halves. The
// pattern ends at the first unescaped delimiter; an escaped delimiter becomes
// a literal one and every other backslash is kept for the matcher. ok is
// false when the value has no kind prefix or no delimiter.
func ParseBody(value string, delim byte) (Body, bool) {
	if len(value) < 2 {
		return Body{}, false
	}
	kind := Kind(value[0])
	if kind != KindCommand && kind != KindListen {
		return Body{}, false
	}

	var pat strings.Builder
	i := 1
	for ; i < len(value) && value[i] != delim; i++ {
		if value[i] == '\\' && i+1 < len(value) {
			if value[i+1] == delim {
				i++
			} else {
				pat.WriteByte(value[i])
				i++
			}
		}
		pat.WriteByte(value[i])
	}
	if i >= len(value) {
		return Body{}, false
	}
	return Body{Kind: kind, Pattern: pat.String(), Code: value[i+1:]}, true
}

// HasUnescaped reports whether value contains delim outside a backslash
// escape, starting after its first byte.
func HasUnescaped(value string, delim byte) bool {
	for i := 1; i < len(value); i++ {
		switch {
		case value[i] == '\\' && i+1 < len(value):
			i++
		case value[i] == delim:
			return true
		}
	}
	return false
}
