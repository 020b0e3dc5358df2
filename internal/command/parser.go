// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"strings"
)

// side is one parsed side of a command's arguments.
type side struct {
	text string
	args []string
}

// argParser splits the text after a command word according to a
// ParsePolicy.
type argParser struct {
	eval Evaluator
	env  *EvalEnv
}

// parseSide reads one side of the arguments from input. The left side of
// an EqSplit command stops at the first '=' outside braces; rest begins
// there.
//
// Without positional splitting the side is evaluated whole, or copied
// literally when it is not parsed (stripping braces on a right side that
// asks for it). With splitting every argument is evaluated separately, or
// copied with its leading braces stripped. The last of MaxArgs arguments
// takes all remaining text.
func (p argParser) parseSide(ctx context.Context, input string, right bool, pol ParsePolicy, noeval bool) (side, string) {
	split, noparse, space := pol.LSArgs, pol.NoParse, pol.LSSpace
	if right {
		split, noparse, space = pol.RSArgs, pol.RSNoParse, pol.RSSpace
	}
	if noeval {
		noparse = true
	}
	stopEq := ""
	if !right && pol.EqSplit {
		stopEq = "="
	}

	if !split {
		mode := EvalFull
		if noparse {
			mode = EvalLiteral
			if right && pol.RSBrace {
				mode = EvalBraces
			}
		}
		out, rest := p.eval.Eval(ctx, p.env, input, mode, stopEq)
		return side{text: strings.TrimSpace(out)}, rest
	}

	delim := byte(',')
	if space {
		delim = ' '
		input = strings.TrimLeft(input, " ")
	}
	mode := EvalFull
	if noparse {
		mode = EvalBraces
	}

	var args []string
	rest := input
	for {
		stops := string(delim) + stopEq
		if len(args) == MaxArgs-1 {
			stops = stopEq
		}
		var out string
		out, rest = p.eval.Eval(ctx, p.env, rest, mode, stops)
		args = append(args, strings.TrimSpace(out))
		if rest == "" || rest[0] != delim {
			break
		}
		rest = rest[1:]
		if space {
			rest = strings.TrimLeft(rest, " ")
		}
	}
	if len(args) == 1 && args[0] == "" {
		args = nil
	}
	return side{text: strings.Join(args, string(delim)), args: args}, rest
}

// parsed holds both sides of a command's arguments.
type parsed struct {
	left       side
	right      side
	rhsPresent bool
}

// parseArgs splits text into left and right sides. noeval is set by the
// NOEVAL switch or the noeval token; noevtoken by the token alone. An
// explicit /noeval on an EqSplit command that turns out to have a right
// side still evaluates the left side.
func (p argParser) parseArgs(ctx context.Context, text string, pol ParsePolicy, noeval, noevtoken bool) parsed {
	var out parsed
	if !pol.EqSplit {
		out.left, _ = p.parseSide(ctx, text, false, pol, noeval)
		return out
	}

	left, rest := p.parseSide(ctx, text, false, pol, noeval)
	if noeval && !noevtoken && rest != "" {
		left, rest = p.parseSide(ctx, text, false, pol, false)
	}
	out.left = left
	if rest != "" {
		out.rhsPresent = true
		out.right, _ = p.parseSide(ctx, rest[1:], true, pol, noeval)
	}
	return out
}

// parseForced parses an EqSplit command's left side normally and its
// right side literally.
func (p argParser) parseForced(ctx context.Context, text string, pol ParsePolicy) parsed {
	var out parsed
	left, rest := p.parseSide(ctx, text, false, pol, false)
	out.left = left
	if rest != "" {
		out.rhsPresent = true
		out.right, _ = p.parseSide(ctx, rest[1:], true, pol, true)
	}
	return out
}
