// Package repl implements an interactive read-compile-print loop: each line
// (or block, once an open brace is seen) is run through the full pipeline
// and either its generated output or its diagnostic is printed immediately.
package repl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"

	"github.com/lumen-lang/lumen/internal/cli/ui"
	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
	"github.com/lumen-lang/lumen/internal/diagnostics"
)

// Recorder persists each compile run; nil disables history.
type Recorder interface {
	Record(ctx context.Context, run diagnostics.Run) (int64, error)
}

// REPL runs the interactive loop over stdin via survey prompts.
type REPL struct {
	out      io.Writer
	recorder Recorder
	noColor  bool
}

// New creates a REPL writing results to out. recorder may be nil.
func New(out io.Writer, recorder Recorder) *REPL {
	return &REPL{out: out, recorder: recorder}
}

// Run prompts for input until the user enters ":quit" or the prompt is
// interrupted, compiling and printing each accumulated block as soon as its
// braces balance.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, color.CyanString("lumen REPL — enter an expression or statement, :quit to exit"))

	var buf strings.Builder
	depth := 0

	for {
		prompt := "lumen> "
		if depth > 0 {
			prompt = "   ... "
		}

		var line string
		if err := survey.AskOne(&survey.Input{Message: prompt}, &line); err != nil {
			return nil
		}

		if depth == 0 && strings.TrimSpace(line) == ":quit" {
			return nil
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		buf.WriteString(line)
		buf.WriteString("\n")

		if depth > 0 {
			continue
		}

		source := buf.String()
		buf.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		r.evaluate(ctx, source)
	}
}

func (r *REPL) evaluate(ctx context.Context, source string) {
	result := pipeline.Compile(source)

	if r.recorder != nil {
		run := diagnostics.Run{SourceHash: hashSource(source), Stage: "ok", CompiledAt: time.Now()}
		if !result.Ok {
			d := result.Diagnostics[0]
			run.Stage = string(d.Stage)
			run.Message = d.Message
			run.Line = d.Line
			run.Column = d.Column
		}
		_, _ = r.recorder.Record(ctx, run)
	}

	if !result.Ok {
		d := result.Diagnostics[0]
		fmt.Fprint(r.out, ui.StageError(string(d.Stage), d.Line, d.Column, d.Message, r.noColor))
		return
	}

	fmt.Fprintln(r.out, color.GreenString("-- generated --"))
	fmt.Fprintln(r.out, result.Output)
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
