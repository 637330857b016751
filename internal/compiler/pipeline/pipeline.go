// Package pipeline runs the four compiler stages in order — lex, parse,
// analyze, generate — and is the single entry point shared by the CLI, the
// playground HTTP server, and the language server, so none of them has to
// know the stage wiring or the scope/environment bootstrap.
package pipeline

import (
	"github.com/lumen-lang/lumen/internal/compiler/analyzer"
	"github.com/lumen-lang/lumen/internal/compiler/codegen"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
	"github.com/lumen-lang/lumen/internal/compiler/parser"
	"github.com/lumen-lang/lumen/internal/compiler/scope"
)

// Stage identifies which of the four stages produced a Diagnostic.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageAnalyze Stage = "analyze"
)

// Diagnostic is a single compile-time failure, positioned the same way
// across all three failing stages so callers never need a stage-specific
// switch to report it.
type Diagnostic struct {
	Stage   Stage
	Line    int
	Column  int
	Message string

	// Name and Candidates are set only when the analyzer failed a name
	// lookup, so a caller can offer a "did you mean" suggestion.
	Name       string   `json:",omitempty"`
	Candidates []string `json:",omitempty"`
}

// Result is the outcome of a full Compile call. Output is empty unless Ok.
type Result struct {
	Ok          bool
	Output      string
	Diagnostics []Diagnostic
}

// Compile runs source through lex, parse, analyze, and generate, stopping at
// the first stage that fails (§4.6 — no recovery between stages).
func Compile(source string) Result {
	tokens, lexErr := lexer.Lex(source)
	if lexErr != nil {
		return failure(StageLex, lexErr.Line, lexErr.Column, lexErr.Message)
	}

	ast, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		return failure(StageParse, parseErr.Line, parseErr.Column, parseErr.Message)
	}

	ir, analyzeErr := analyzer.Analyze(ast, scope.New(nil))
	if analyzeErr != nil {
		d := Diagnostic{Stage: StageAnalyze, Line: analyzeErr.Line, Column: analyzeErr.Column, Message: analyzeErr.Message}
		d.Name = analyzeErr.Name
		d.Candidates = analyzeErr.Candidates
		return Result{Diagnostics: []Diagnostic{d}}
	}

	return Result{Ok: true, Output: codegen.Generate(ir)}
}

func failure(stage Stage, line, column int, message string) Result {
	return Result{
		Diagnostics: []Diagnostic{{Stage: stage, Line: line, Column: column, Message: message}},
	}
}
