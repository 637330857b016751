package parser

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/compiler/lexer"
)

// ParseError is raised when the token stream does not match the grammar: an
// unexpected token, a missing required token, or a stray trailing comma.
// Per §4.6 the parser never recovers — the first ParseError aborts parsing.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Stage identifies which pipeline stage produced this error.
func (e *ParseError) Stage() string { return "parse" }

func newParseError(message string, tok lexer.Token) *ParseError {
	return &ParseError{Message: message, Line: tok.Line, Column: tok.Column}
}
