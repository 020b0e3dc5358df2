// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"slices"
	"strings"
)

// StandardFlags lists the object flags known to the server.
var StandardFlags = []string{
	"ABODE", "ANSI", "AUDIBLE", "CHOWN_OK", "DARK", "DEBUG", "ENTER_OK",
	"FIXED", "FLOATING", "GAGGED", "GOING", "HALT", "HAVEN", "INHERIT",
	"JUMP_OK", "LINK_OK", "LISTEN_PARENT", "MISTRUST", "MONITOR",
	"NO_COMMAND", "NOSPOOF", "OPAQUE", "ORPHAN", "PUPPET", "QUIET",
	"ROYALTY", "SAFE", "STICKY", "SUSPECT", "TRANSPARENT", "UNFINDABLE",
	"VERBOSE", "VISUAL", "WIZARD", "ZONE",
}

// StandardPowers lists the powers known to the server.
var StandardPowers = []string{
	"ANNOUNCE", "BOOT", "BUILDER", "CAN_SPOOF", "CHAT_PRIVS", "DEBIT",
	"GUEST", "HALT", "HIDE", "HOOK", "IDLE", "LINK_ANYWHERE", "LOGIN",
	"LONG_FINGERS", "MANY_ATTRIBS", "NO_PAY", "NO_QUOTA", "OPEN_ANYWHERE",
	"PEMIT_ALL", "PLAYER_CREATE", "POLL", "QUEUE", "QUOTA", "SEARCH",
	"SEE_ALL", "SEE_QUEUE", "SQL_OK", "TPORT_ANYTHING", "TPORT_ANYWHERE",
	"UNKILLABLE",
}

// IsFlag reports whether name is a standard flag, ignoring case.
func IsFlag(name string) bool {
	return slices.Contains(StandardFlags, strings.ToUpper(name))
}

// IsPower reports whether name is a standard power, ignoring case.
func IsPower(name string) bool {
	return slices.Contains(StandardPowers, strings.ToUpper(name))
}
