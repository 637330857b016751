package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Lumen language server over stdio",
	Long:  "Speaks the Language Server Protocol over stdin/stdout, publishing lex/parse/analyze diagnostics on open, change, and save",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := lsp.NewServer()
		if err := srv.Run(context.Background()); err != nil {
			return fmt.Errorf("language server exited with error: %w", err)
		}
		return nil
	},
}
