// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import "fmt"

// Code classifies the outcome of an attribute write or clear.
type Code int

// Result codes.
const (
	OK Code = iota
	Failed
	Safe
	BadName
	TooMany
	Tree
	NotFound
)

var codeNames = [...]string{"OK", "ERROR", "SAFE", "BADNAME", "TOOMANY", "TREE", "NOTFOUND"}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("Code(%d)", int(c))
	}
	return codeNames[c]
}

// Result is the outcome of an attribute operation. Missing names the
// branch attribute that blocked a Failed write, when one did.
type Result struct {
	Code    Code
	Missing string
}

// OK reports success.
func (r Result) OK() bool { return r.Code == OK }

// Message renders the result for the player who asked for the change.
// clearing selects the wording for removals.
func (r Result) Message(obj, name string, clearing bool) string {
	switch r.Code {
	case OK:
		if clearing {
			return fmt.Sprintf("%s/%s - Cleared.", obj, name)
		}
		return fmt.Sprintf("%s/%s - Set.", obj, name)
	case Safe:
		return fmt.Sprintf("Attribute %s is SAFE. Set it !SAFE to modify it.", name)
	case Tree:
		if clearing {
			return fmt.Sprintf("Unable to remove '%s' because of a protected tree attribute.", name)
		}
		return fmt.Sprintf("Unable to set '%s' because of a failure to create a needed parent attribute.", name)
	case BadName:
		return "That's not a very good name for an attribute."
	case TooMany:
		return "Too many attributes on that object to add another."
	case NotFound:
		return "No such attribute to reset."
	}
	if r.Missing != "" {
		if clearing {
			return fmt.Sprintf("%s is a branch attribute; remove its children first.", r.Missing)
		}
		return fmt.Sprintf("You must set %s first.", r.Missing)
	}
	return "That attribute cannot be changed by you."
}
