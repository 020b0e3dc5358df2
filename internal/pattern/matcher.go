// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pattern matches free text against the glob and regular expression
// patterns stored in $command and ^listen attribute bodies.
package pattern

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MaxCaptures is the number of positional captures a match can produce.
const MaxCaptures = 10

const defaultCacheSize = 1024

// Options selects the matching mode for one pattern.
type Options struct {
	// Regex selects regular expression matching instead of glob matching.
	Regex bool
	// CaseSensitive disables case folding.
	CaseSensitive bool
}

type cacheKey struct {
	pattern string
	opts    Options
}

// compiledRegex is a cache entry. A nil re marks a pattern that failed to
// compile; it never matches.
type compiledRegex struct {
	re *regexp.Regexp
}

// Matcher tests input against patterns, caching compiled forms.
type Matcher struct {
	globs   *lru.Cache[cacheKey, glob.Glob]
	regexes *lru.Cache[cacheKey, compiledRegex]
	logger  *slog.Logger
}

// Option configures a Matcher.
type Option func(*matcherConfig)

type matcherConfig struct {
	cacheSize int
	logger    *slog.Logger
}

// WithCacheSize bounds the number of compiled patterns kept per mode.
func WithCacheSize(n int) Option {
	return func(c *matcherConfig) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithLogger sets the logger used to report malformed patterns.
func WithLogger(l *slog.Logger) Option {
	return func(c *matcherConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	cfg := matcherConfig{cacheSize: defaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	// lru.New only fails for a non-positive size, which the option guards.
	globs, _ := lru.New[cacheKey, glob.Glob](cfg.cacheSize)         //nolint:errcheck // size is positive
	regexes, _ := lru.New[cacheKey, compiledRegex](cfg.cacheSize) //nolint:errcheck // size is positive
	return &Matcher{globs: globs, regexes: regexes, logger: cfg.logger}
}

// Test reports whether input matches pattern without producing captures.
func (m *Matcher) Test(pattern, input string, opts Options) bool {
	if opts.Regex {
		re := m.regex(pattern, opts)
		return re != nil && re.MatchString(input)
	}
	g := m.glob(pattern, opts)
	if g == nil {
		return wildMatch([]rune(pattern), []rune(input), opts.CaseSensitive, nil)
	}
	if !opts.CaseSensitive {
		input = strings.ToLower(input)
	}
	return g.Match(input)
}

// Captures matches input against pattern and returns up to MaxCaptures
// positional captures. For globs, each '*' and '?' yields one capture in
// pattern order. For regular expressions, capture 0 is the whole match and
// 1..9 are the parenthesised groups. The cheap non-capturing test runs
// first; the capturing pass only runs for a confirmed match.
func (m *Matcher) Captures(pattern, input string, opts Options) ([]string, bool) {
	if !m.Test(pattern, input, opts) {
		return nil, false
	}
	if opts.Regex {
		sub := m.regex(pattern, opts).FindStringSubmatch(input)
		if len(sub) > MaxCaptures {
			sub = sub[:MaxCaptures]
		}
		return sub, true
	}
	caps := make([]string, 0, MaxCaptures)
	if !wildMatch([]rune(pattern), []rune(input), opts.CaseSensitive, &caps) {
		return nil, false
	}
	if len(caps) > MaxCaptures {
		caps = caps[:MaxCaptures]
	}
	return caps, true
}

// Valid reports whether pattern compiles in the given mode.
func (m *Matcher) Valid(pattern string, opts Options) bool {
	if opts.Regex {
		return m.regex(pattern, opts) != nil
	}
	return true
}

func (m *Matcher) regex(pattern string, opts Options) *regexp.Regexp {
	key := cacheKey{pattern: pattern, opts: opts}
	if c, ok := m.regexes.Get(key); ok {
		return c.re
	}
	expr := pattern
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		m.logger.Warn("malformed regexp pattern", "pattern", pattern, "error", err)
		re = nil
	}
	m.regexes.Add(key, compiledRegex{re: re})
	return re
}

func (m *Matcher) glob(pattern string, opts Options) glob.Glob {
	key := cacheKey{pattern: pattern, opts: opts}
	if g, ok := m.globs.Get(key); ok {
		return g
	}
	src := pattern
	if !opts.CaseSensitive {
		src = strings.ToLower(src)
	}
	g, err := glob.Compile(translateWild(src))
	if err != nil {
		// Fall back to the capturing matcher; the pattern is still valid
		// wildcard syntax even if the glob compiler disagrees.
		m.logger.Debug("glob compile failed", "pattern", pattern, "error", err)
		return nil
	}
	m.globs.Add(key, g)
	return g
}

// translateWild converts wildcard syntax ('*', '?', backslash escapes, every
// other character literal) into gobwas/glob syntax.
func translateWild(pat string) string {
	var b strings.Builder
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			b.WriteString(glob.QuoteMeta(lit.String()))
			lit.Reset()
		}
	}
	runes := []rune(pat)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*', '?':
			flush()
			b.WriteRune(r)
		case '\\':
			if i+1 < len(runes) {
				i++
			}
			lit.WriteRune(runes[i])
		default:
			lit.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

func runeEqual(a, b rune, cs bool) bool {
	if cs {
		return a == b
	}
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

// wildMatch is the capturing wildcard matcher. '*' matches the shortest run
// that lets the rest of the pattern match; '?' matches one character; a
// backslash forces the next character to match literally. When caps is nil
// nothing is recorded.
func wildMatch(p, s []rune, cs bool, caps *[]string) bool {
	for len(p) > 0 {
		switch p[0] {
		case '*':
			if len(p) == 1 {
				if caps != nil {
					*caps = append(*caps, string(s))
				}
				return true
			}
			for i := 0; i <= len(s); i++ {
				if caps == nil {
					if wildMatch(p[1:], s[i:], cs, nil) {
						return true
					}
					continue
				}
				mark := len(*caps)
				*caps = append(*caps, string(s[:i]))
				if wildMatch(p[1:], s[i:], cs, caps) {
					return true
				}
				*caps = (*caps)[:mark]
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			if caps != nil {
				*caps = append(*caps, string(s[0]))
			}
			p, s = p[1:], s[1:]
		case '\\':
			if len(p) > 1 {
				p = p[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || !runeEqual(p[0], s[0], cs) {
				return false
			}
			p, s = p[1:], s[1:]
		}
	}
	return len(s) == 0
}
