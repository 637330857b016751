// Package lexer turns Lumen source text into a flat token sequence.
package lexer

import "fmt"

// TokenKind identifies the lexical category of a Token.
type TokenKind int

const (
	// Identifier covers both plain identifiers and keywords; the parser tells
	// them apart by Literal, since keywords are just identifiers with a
	// reserved spelling.
	Identifier TokenKind = iota
	Integer
	Decimal
	Character
	String
	Operator
)

var tokenKindNames = map[TokenKind]string{
	Identifier: "Identifier",
	Integer:    "Integer",
	Decimal:    "Decimal",
	Character:  "Character",
	String:     "String",
	Operator:   "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Keywords are lexed as ordinary identifiers; this set lets the parser (and
// anything else) recognize reserved spellings without a separate lex path.
var Keywords = map[string]bool{
	"LET": true, "DEF": true, "IF": true, "ELSE": true, "FOR": true, "IN": true,
	"RETURN": true, "DO": true, "END": true, "OBJECT": true,
	"AND": true, "OR": true, "NIL": true, "TRUE": true, "FALSE": true,
}

// Token is a lexical unit: a kind and the exact source substring matched.
type Token struct {
	Kind    TokenKind
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Literal, t.Line, t.Column)
}

// IsKeyword reports whether literal is one of the reserved identifier
// spellings from §3 of the core data model.
func IsKeyword(literal string) bool {
	return Keywords[literal]
}

// LexError is raised when the character stream cannot be tokenized: an
// unexpected code unit, an unterminated character/string literal, or an
// invalid escape sequence.
type LexError struct {
	Message string
	Line    int
	Column  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Stage identifies which pipeline stage produced this error.
func (e *LexError) Stage() string { return "lex" }
