package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/cli/config"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/repl"
)

var replNoHistory bool

func init() {
	replCmd.Flags().BoolVar(&replNoHistory, "no-history", false, "Don't record compile runs to the diagnostics store")
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Lumen REPL",
	RunE: func(cmd *cobra.Command, args []string) error {
		var recorder repl.Recorder
		if !replNoHistory {
			cfg, err := config.Load()
			if err == nil {
				store, err := diagnostics.Open(cfg.Diagnostics.Driver, config.GetDiagnosticsDSN())
				if err == nil {
					defer store.Close()
					recorder = store
				}
			}
		}

		r := repl.New(os.Stdout, recorder)
		if err := r.Run(context.Background()); err != nil {
			return fmt.Errorf("repl exited with error: %w", err)
		}
		return nil
	},
}
