// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"strings"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// call is a command resolved from input and ready to run.
type call struct {
	cmd       *Descriptor
	switches  SwitchSet
	extra     string
	switchErr string

	raw    string
	evaled string
	args   string
	p      parsed
}

// parse resolves input to a table command and runs it. When no enabled
// command matches it returns done=false and the text to match against
// $commands.
func (d *Dispatcher) parse(ctx context.Context, st *dispatch, input string) (fallback string, out Outcome, done bool) {
	exec := st.req.Executor
	p := input
	noevtoken := false

	if p[0] == NoEvalToken {
		noevtoken = true
		p = strings.TrimLeft(p[1:], " ")
		if p == "" {
			return "", OutcomeEmpty, true
		}
	}
	raw := p

	if p[0] == '[' {
		if cmd := d.table.FindExact("WARN_ON_MISSING"); cmd != nil && !cmd.Disabled {
			d.runCommand(ctx, st, &call{
				cmd:    cmd,
				raw:    p,
				evaled: cmd.Name,
				args:   p,
				p:      parsed{left: side{text: p}},
			})
			return "", OutcomeCommand, true
		}
	}

	replacer, skip := d.replacer(exec, &p)
	if replacer != "" {
		noevtoken = noevtoken || replacer == "@CHAT" || replacer == "@FORCE"
	}

	var (
		cmd    *Descriptor
		word   string
		rest   string
		attrib string
	)
	if replacer != "" {
		cmd = d.table.FindExact(replacer)
		if skip {
			p = p[1:]
		}
		rest = p
	} else {
		if !strings.EqualFold(p, "home") && world.MatchExit(d.graph, d.speechLoc(exec), p) != dbref.Nothing {
			p = "GOTO " + p
			noevtoken = true
		}
		p = strings.TrimLeft(p, " ")
		mode := EvalFull
		if noevtoken {
			mode = EvalLiteral
		}
		word, rest = d.eval.Eval(ctx, st.env, p, mode, " ")
		upper := strings.ToUpper(word)
		if attrib = d.commandIsAttr(upper); attrib != "" {
			cmd = d.table.FindExact("ATTRIB_SET")
		} else {
			name, _, _ := strings.Cut(upper, "/")
			if cmd = d.table.Lookup(name); cmd != nil && cmd.Internal() {
				cmd = nil
			}
		}
	}

	if cmd == nil || cmd.Disabled {
		if replacer != "" {
			return raw, 0, false
		}
		fb := word
		if rest != "" {
			if rest[0] == ' ' {
				fb += " "
				rest = rest[1:]
			}
			mode := EvalFull
			if noevtoken {
				mode = EvalLiteral
			}
			out, _ := d.eval.Eval(ctx, st.env, rest, mode, "")
			fb += out
		}
		return fb, 0, false
	}

	if !d.checkCommand(ctx, exec, cmd) {
		return "", OutcomeDenied, true
	}

	c := &call{cmd: cmd, raw: raw}
	sws := d.table.switches
	evaled := cmd.Name
	if replacer != "" {
		evaled += " "
	}

	var extras []string
	sawSwitch := false
	if replacer == "" && attrib == "" {
		if i := strings.IndexByte(word, '/'); i >= 0 {
			sawSwitch = true
			evaled = cmd.Name + word[i:]
			for _, sw := range strings.Split(strings.ToUpper(word[i+1:]), "/") {
				if idx, ok := sws.Find(cmd.Switches, sw); ok {
					c.switches.set(idx)
					continue
				}
				if cmd.AnySwitch {
					extras = append(extras, sw)
					continue
				}
				if c.switchErr == "" {
					c.switchErr = cmd.Name + " doesn't know switch " + sw + "."
				}
			}
		}
	}
	if !sawSwitch {
		if idx, ok := sws.Index(SwitchNone); ok {
			c.switches.set(idx)
		}
	}
	if noevtoken {
		if idx, ok := sws.Index(SwitchNoEval); ok {
			c.switches.set(idx)
		}
	}
	if attrib != "" {
		c.extra = attrib
	} else {
		c.extra = strings.Join(extras, " ")
	}

	text := strings.TrimPrefix(rest, " ")
	c.args = text
	ap := argParser{eval: d.eval, env: st.env}
	if attrib != "" && st.req.FromSocket {
		c.p = ap.parseForced(ctx, text, cmd.Policy)
		if idx, ok := sws.Index(SwitchNoEval); ok {
			c.switches.set(idx)
		}
	} else {
		noeval := sws.Has(c.switches, SwitchNoEval) || noevtoken
		c.p = ap.parseArgs(ctx, text, cmd.Policy, noeval, noevtoken)
	}

	if attrib != "" {
		evaled += "/" + attrib
	}
	if strings.HasPrefix(rest, " ") && !strings.HasSuffix(evaled, " ") {
		evaled += " "
	}
	if cmd.Policy.LSArgs {
		evaled += strings.Join(c.p.left.args, ",")
	} else {
		evaled += c.p.left.text
	}
	if cmd.Policy.EqSplit && c.p.rhsPresent {
		evaled += "="
		if cmd.Policy.RSArgs {
			evaled += strings.Join(c.p.right.args, ",")
		} else {
			evaled += c.p.right.text
		}
	}
	c.evaled = evaled

	if !d.runCommand(ctx, st, c) {
		return evaled, 0, false
	}
	return "", OutcomeCommand, true
}

// replacer applies the single-character tokens. It returns the command the
// token stands for and whether the token character should be dropped from
// the arguments. p may be rewritten.
func (d *Dispatcher) replacer(exec dbref.Ref, p *string) (string, bool) {
	s := *p
	switch s[0] {
	case SayToken:
		return "SAY", true
	case PoseToken:
		return "POSE", true
	case SemiPoseToken:
		if len(s) > 1 && s[1] == ' ' {
			return "POSE", true
		}
		return "SEMIPOSE", true
	case EmitToken:
		return "@EMIT", true
	case ChatToken:
		if d.channels == nil {
			return "", false
		}
		name, msg, ok := strings.Cut(s[1:], " ")
		if !ok || name == "" || !d.channels.MatchChannel(exec, name) {
			return "", false
		}
		if !d.CanUse(exec, d.table.FindExact("@CHAT")) {
			return "", false
		}
		*p = string(ChatToken) + name + "=" + msg
		return "@CHAT", true
	case NumberToken:
		if !d.graph.Mobile(exec) {
			return "", false
		}
		if forced, ok := parseForce(s); ok {
			*p = forced
			return "@FORCE", false
		}
	}
	return "", false
}

// parseForce rewrites "#123 text" to "#123=text".
func parseForce(s string) (string, bool) {
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(s) || s[i] != ' ' || strings.TrimSpace(s[i+1:]) == "" {
		return "", false
	}
	return s[:i] + "=" + s[i+1:], true
}

// commandIsAttr reports the attribute an attribute-setting command word
// names: "&NAME", "@_NAME", or "@NAME" for a standard attribute that is not
// also a command.
func (d *Dispatcher) commandIsAttr(word string) string {
	switch {
	case len(word) > 1 && word[0] == '&':
		return word[1:]
	case len(word) > 2 && strings.HasPrefix(word, "@_"):
		return word[2:]
	case len(word) > 1 && word[0] == '@':
		name, _, _ := strings.Cut(word, "/")
		if d.table.Lookup(name) != nil {
			return ""
		}
		if std, ok := d.attrs.Standard().Match(name[1:]); ok {
			return std.Name
		}
	}
	return ""
}
