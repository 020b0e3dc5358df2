// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// EvalMode selects how much of the expression language Eval applies.
type EvalMode uint8

// Evaluation modes.
const (
	// EvalLiteral copies text as is. Braces and brackets still nest, so a
	// stop character inside them does not end the text.
	EvalLiteral EvalMode = iota
	// EvalBraces is EvalLiteral that also strips a leading pair of braces.
	EvalBraces
	// EvalFull performs substitutions and strips escapes and leading braces.
	EvalFull
)

// EvalEnv is the context an expression is evaluated in.
type EvalEnv struct {
	Executor dbref.Ref
	Caller   dbref.Ref
	Enactor  dbref.Ref
	// Args are the positional values %0 to %9.
	Args []string
	// Registers are the named q-registers, keyed by upper-case name.
	Registers map[string]string
}

// Register returns a q-register value.
func (e *EvalEnv) Register(name string) string {
	if e == nil || e.Registers == nil {
		return ""
	}
	return e.Registers[strings.ToUpper(name)]
}

// SetRegister sets a q-register.
func (e *EvalEnv) SetRegister(name, value string) {
	if e.Registers == nil {
		e.Registers = map[string]string{}
	}
	e.Registers[strings.ToUpper(name)] = value
}

// Evaluator evaluates softcode text. Eval reads input up to the first of
// stops found outside braces and brackets, or to the end. It returns the
// evaluated text and the unread remainder, which starts at the stop
// character.
type Evaluator interface {
	Eval(ctx context.Context, env *EvalEnv, input string, mode EvalMode, stops string) (out, rest string)
}

// BasicEvaluator implements percent substitutions, escapes and brace
// grouping. Bracketed function calls are copied unevaluated.
type BasicEvaluator struct {
	graph world.Graph
}

// NewBasicEvaluator creates an evaluator that resolves names and
// locations from g.
func NewBasicEvaluator(g world.Graph) *BasicEvaluator {
	return &BasicEvaluator{graph: g}
}

// Eval implements Evaluator.
func (e *BasicEvaluator) Eval(_ context.Context, env *EvalEnv, input string, mode EvalMode, stops string) (string, string) {
	if env == nil {
		env = &EvalEnv{Executor: dbref.Nothing, Caller: dbref.Nothing, Enactor: dbref.Nothing}
	}
	var b strings.Builder
	brackets := 0
	i := 0

	for i < len(input) {
		c := input[i]
		if brackets == 0 && strings.IndexByte(stops, c) >= 0 {
			break
		}
		switch {
		case c == '\\':
			if i+1 < len(input) {
				if mode != EvalFull {
					b.WriteByte(c)
				}
				b.WriteByte(input[i+1])
				i += 2
				continue
			}
			if mode != EvalFull {
				b.WriteByte(c)
			}
			i++
		case c == '{':
			end := matchBrace(input, i)
			strip := mode != EvalLiteral && brackets == 0 && strings.TrimSpace(b.String()) == ""
			if strip && end < len(input) {
				b.Reset()
				b.WriteString(input[i+1 : end])
			} else {
				b.WriteString(input[i:min(end+1, len(input))])
			}
			i = end + 1
		case c == '[':
			brackets++
			b.WriteByte(c)
			i++
		case c == ']' && brackets > 0:
			brackets--
			b.WriteByte(c)
			i++
		case c == '%' && mode == EvalFull && i+1 < len(input):
			i = e.substitute(&b, env, input, i+1)
		default:
			b.WriteByte(c)
			i++
		}
	}
	if i > len(input) {
		i = len(input)
	}
	return b.String(), input[i:]
}

// matchBrace returns the index of the brace closing the one at start, or
// len(s) if it is unbalanced.
func matchBrace(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// substitute writes the expansion of the %-code at input[i] and returns the
// index after it.
func (e *BasicEvaluator) substitute(b *strings.Builder, env *EvalEnv, input string, i int) int {
	c := input[i]
	switch {
	case c >= '0' && c <= '9':
		n := int(c - '0')
		if n < len(env.Args) {
			b.WriteString(env.Args[n])
		}
	case c == '#':
		b.WriteString(env.Enactor.String())
	case c == '!':
		b.WriteString(env.Executor.String())
	case c == '@':
		b.WriteString(env.Caller.String())
	case c == 'r' || c == 'R':
		b.WriteByte('\n')
	case c == 't' || c == 'T':
		b.WriteByte('\t')
	case c == 'b' || c == 'B':
		b.WriteByte(' ')
	case c == 'n' || c == 'N':
		name := e.name(env.Enactor)
		if c == 'N' && name != "" {
			r := []rune(name)
			r[0] = unicode.ToUpper(r[0])
			name = string(r)
		}
		b.WriteString(name)
	case c == 'l' || c == 'L':
		if e.graph != nil && e.graph.Good(env.Enactor) {
			b.WriteString(e.graph.Location(env.Enactor).String())
		} else {
			b.WriteString(dbref.Nothing.String())
		}
	case c == 'q' || c == 'Q':
		return e.register(b, env, input, i+1)
	default:
		b.WriteByte(c)
	}
	return i + 1
}

// register expands %qX or %q<name>.
func (e *BasicEvaluator) register(b *strings.Builder, env *EvalEnv, input string, i int) int {
	if i >= len(input) {
		return i
	}
	if input[i] == '<' {
		end := strings.IndexByte(input[i:], '>')
		if end < 0 {
			return len(input)
		}
		b.WriteString(env.Register(input[i+1 : i+end]))
		return i + end + 1
	}
	b.WriteString(env.Register(input[i : i+1]))
	return i + 1
}

func (e *BasicEvaluator) name(ref dbref.Ref) string {
	if e.graph == nil || !e.graph.Good(ref) {
		return ""
	}
	return e.graph.Name(ref)
}

// ParseBoolean converts evaluated text to a truth value: empty text, error
// results ("#-1 ...") and zero are false, anything else is true.
func ParseBoolean(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#-") {
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return true
}
