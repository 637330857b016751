package analyzer

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/compiler/ast"
)

// AnalyzeError is raised when an AST is well-formed but violates a typing or
// scoping rule: an undeclared name, a redeclaration in the same scope, a
// subtype violation, a RETURN outside any DEF, or an unknown property or
// type-annotation name. The analyzer never recovers — the first
// AnalyzeError aborts lowering and is returned to the caller (§4.6).
type AnalyzeError struct {
	Message string
	Line    int
	Column  int

	// Name and Candidates are set only for a failed name lookup (an
	// undeclared identifier or an unknown type-annotation name); Candidates
	// holds every name visible at the point of failure, for a caller to
	// offer a "did you mean" suggestion against.
	Name       string
	Candidates []string
}

func (e *AnalyzeError) Error() string {
	return fmt.Sprintf("analyze error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Stage identifies which pipeline stage produced this error.
func (e *AnalyzeError) Stage() string { return "analyze" }

func newAnalyzeError(message string, loc ast.SourceLocation) *AnalyzeError {
	return &AnalyzeError{Message: message, Line: loc.Line, Column: loc.Column}
}

// newUnknownNameError builds an AnalyzeError for a failed lookup of name,
// recording candidates so the caller can suggest a close match.
func newUnknownNameError(message string, loc ast.SourceLocation, name string, candidates []string) *AnalyzeError {
	return &AnalyzeError{Message: message, Line: loc.Line, Column: loc.Column, Name: name, Candidates: candidates}
}
