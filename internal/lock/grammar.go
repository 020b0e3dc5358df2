// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lock

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// lockLexer splits a lock into operators and atoms. An atom runs until the
// next operator and may contain inner spaces (attribute patterns do).
var lockLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Op", Pattern: `[&|!()]`},
	{Name: "Atom", Pattern: `[^&|!()\s](?:[^&|()]*[^&|()\s])?`},
	{Name: "whitespace", Pattern: `\s+`},
})

// exprAST is a disjunction of conjunctions.
//
// Grammar: and ( "|" and )*
type exprAST struct {
	Pos lexer.Position `parser:""`
	Or  []*andAST      `parser:"@@ ( '|' @@ )*"`
}

// andAST is a conjunction of unary terms.
type andAST struct {
	Pos lexer.Position `parser:""`
	And []*unaryAST    `parser:"@@ ( '&' @@ )*"`
}

// unaryAST is an optionally negated primary.
type unaryAST struct {
	Pos     lexer.Position `parser:""`
	Not     *unaryAST      `parser:"  '!' @@"`
	Primary *primaryAST    `parser:"| @@"`
}

// primaryAST is a parenthesised expression or an atom.
type primaryAST struct {
	Pos  lexer.Position `parser:""`
	Sub  *exprAST       `parser:"  '(' @@ ')'"`
	Atom string         `parser:"| @Atom"`
}

func newParser() (*participle.Parser[exprAST], error) {
	return participle.Build[exprAST](
		participle.Lexer(lockLexer),
	)
}
