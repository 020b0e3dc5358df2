// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package lock implements the boolean lock language used for command
// restrictions and object locks.
//
// Atoms:
//
//	#TRUE, #FALSE     constants
//	#n                actor is #n or carries #n
//	=#n               actor is #n
//	+#n               actor carries #n
//	$#n               actor has the same owner as #n
//	@#n               actor passes #n's Basic lock
//	FLAG^name         actor has the flag
//	POWER^name        actor has the power
//	TYPE^name         actor is of the type
//	NAME^pattern      actor's name matches the wildcard pattern
//	attr:pattern      actor (or something it carries) has attr matching pattern
//
// Operators are ! (not), & (and) and | (or), with parentheses for grouping.
package lock

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/pattern"
	"github.com/holomush/pennmush/internal/world"
)

// MaxDepth bounds indirect (@#n) lock evaluation.
const MaxDepth = 10

// Basic is the name of the default lock consulted by indirect atoms.
const Basic = "Basic"

var parser *participle.Parser[exprAST]

var wild = pattern.New(pattern.WithCacheSize(256))

func init() {
	var err error
	parser, err = newParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build lock parser: %v", err))
	}
}

// Env supplies the object graph and attribute data a lock is evaluated
// against.
type Env interface {
	world.Graph
	// AttrValue returns the value of an attribute on obj, including
	// inherited ones.
	AttrValue(obj dbref.Ref, name string) (string, bool)
	// NamedLock returns the named lock on obj, or nil for none.
	NamedLock(obj dbref.Ref, name string) *Lock
}

// Lock is a compiled lock expression. A nil *Lock always passes.
type Lock struct {
	root node
}

// Parse compiles a lock expression.
func Parse(text string) (*Lock, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, oops.Code("LOCK_INVALID").Errorf("empty lock expression")
	}
	ast, err := parser.ParseString("", text)
	if err != nil {
		return nil, oops.Code("LOCK_INVALID").With("lock", text).Wrapf(err, "parsing lock")
	}
	root, err := compileExpr(ast)
	if err != nil {
		return nil, oops.Code("LOCK_INVALID").With("lock", text).Wrap(err)
	}
	return &Lock{root: root}, nil
}

// MustParse is Parse for expressions known to be valid. It panics otherwise.
func MustParse(text string) *Lock {
	l, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return l
}

// True returns a lock that always passes.
func True() *Lock {
	return &Lock{root: constNode(true)}
}

// Eval reports whether actor passes the lock on target.
func (l *Lock) Eval(env Env, actor, target dbref.Ref) bool {
	if l == nil || l.root == nil {
		return true
	}
	return l.root.eval(env, actor, target, 0)
}

// String returns the canonical text of the lock.
func (l *Lock) String() string {
	if l == nil || l.root == nil {
		return "#TRUE"
	}
	return l.root.String()
}

// Clone returns a deep copy of the lock.
func (l *Lock) Clone() *Lock {
	if l == nil {
		return nil
	}
	return &Lock{root: l.root.clone()}
}

// IsTrue reports whether the lock is absent or the constant #TRUE.
func (l *Lock) IsTrue() bool {
	if l == nil || l.root == nil {
		return true
	}
	c, ok := l.root.(constNode)
	return ok && bool(c)
}

// Equal reports whether two locks have the same canonical form.
func Equal(a, b *Lock) bool {
	return a.String() == b.String()
}

func compileExpr(e *exprAST) (node, error) {
	terms := make([]node, 0, len(e.Or))
	for _, a := range e.Or {
		n, err := compileAnd(a)
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return orNode(terms), nil
}

func compileAnd(a *andAST) (node, error) {
	terms := make([]node, 0, len(a.And))
	for _, u := range a.And {
		n, err := compileUnary(u)
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return andNode(terms), nil
}

func compileUnary(u *unaryAST) (node, error) {
	if u.Not != nil {
		n, err := compileUnary(u.Not)
		if err != nil {
			return nil, err
		}
		return notNode{n}, nil
	}
	if u.Primary.Sub != nil {
		return compileExpr(u.Primary.Sub)
	}
	return parseAtom(u.Primary.Atom)
}
