package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/cli/ui"
	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
)

var (
	compileJSON    bool
	compileOutput  string
	compileNoColor bool
)

func init() {
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "Output diagnostics in JSON format")
	compileCmd.Flags().StringVar(&compileOutput, "output", "", "Write generated Java source to this path instead of stdout")
	compileCmd.Flags().BoolVar(&compileNoColor, "no-color", false, "Disable colored output")
}

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Lumen source file to Java",
	Long:  "Run a .lum file (or stdin, with no argument) through the lex, parse, analyze, and generate stages",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args)
		if err != nil {
			return err
		}

		result := pipeline.Compile(source)

		if compileJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		if !result.Ok {
			d := result.Diagnostics[0]
			message := d.Message
			if guess := ui.FindBestMatch(d.Name, d.Candidates, nil); guess != "" {
				message += fmt.Sprintf(" (did you mean %q?)", guess)
			}
			fmt.Fprint(os.Stderr, ui.StageError(string(d.Stage), d.Line, d.Column, message, compileNoColor))
			fmt.Fprintln(os.Stderr, pipeline.FormatDiagnostic(source, d))
			return fmt.Errorf("compilation failed")
		}

		if compileOutput != "" {
			if err := os.WriteFile(compileOutput, []byte(result.Output), 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprint(os.Stdout, ui.FormatSuccess(fmt.Sprintf("wrote %s", compileOutput), compileNoColor))
			return nil
		}

		fmt.Println(result.Output)
		return nil
	},
}

func readSource(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
