// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handlers

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/command"
	"github.com/holomush/pennmush/internal/dbref"
)

// ChannelList is an in-memory set of chat channels. It serves both @chat
// and the "+channel" shortcut.
type ChannelList struct {
	mu       sync.RWMutex
	members  map[string][]dbref.Ref
	notifier command.Notifier
	names    func(dbref.Ref) string
}

// NewChannelList creates a channel list that delivers through n. name
// gives the display name of a speaker.
func NewChannelList(n command.Notifier, name func(dbref.Ref) string) *ChannelList {
	return &ChannelList{members: map[string][]dbref.Ref{}, notifier: n, names: name}
}

// Join adds who to channel, creating it if needed.
func (c *ChannelList) Join(channel string, who dbref.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := strings.ToUpper(channel)
	if !slices.Contains(c.members[key], who) {
		c.members[key] = append(c.members[key], who)
	}
}

// match returns the one channel actor belongs to whose name starts with
// prefix.
func (c *ChannelList) match(actor dbref.Ref, prefix string) (string, bool) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", false
	}
	found := ""
	for name, members := range c.members {
		if name == prefix && slices.Contains(members, actor) {
			return name, true
		}
		if strings.HasPrefix(name, prefix) && slices.Contains(members, actor) {
			if found != "" {
				return "", false
			}
			found = name
		}
	}
	return found, found != ""
}

// MatchChannel reports whether prefix names a channel actor is on.
func (c *ChannelList) MatchChannel(actor dbref.Ref, prefix string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.match(actor, prefix)
	return ok
}

// Send delivers msg to every member of the channel.
func (c *ChannelList) Send(ctx context.Context, speaker dbref.Ref, channel, msg string) error {
	c.mu.RLock()
	name, ok := c.match(speaker, channel)
	members := slices.Clone(c.members[name])
	c.mu.RUnlock()
	if !ok {
		return oops.Code("NO_SUCH_CHANNEL").With("channel", channel).Errorf("no channel %q for %s", channel, speaker)
	}

	line := "<" + displayChannel(name) + "> " + c.names(speaker) + " says, \"" + msg + "\""
	switch {
	case strings.HasPrefix(msg, ":"):
		line = "<" + displayChannel(name) + "> " + c.names(speaker) + " " + msg[1:]
	case strings.HasPrefix(msg, ";"):
		line = "<" + displayChannel(name) + "> " + c.names(speaker) + msg[1:]
	}
	for _, m := range members {
		c.notifier.Notify(ctx, m, line)
	}
	return nil
}

func displayChannel(name string) string {
	if name == "" {
		return name
	}
	return name[:1] + strings.ToLower(name[1:])
}
