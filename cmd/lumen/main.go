package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lumen",
		Short: "Lumen compiler and tooling",
		Long: `Lumen compiles a small, strictly-typed expression language to Java.
It provides a four-stage pipeline - lex, parse, analyze, generate - along
with a REPL, a language server, and an HTTP playground.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
