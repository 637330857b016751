package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/cli/config"
	"github.com/lumen-lang/lumen/internal/cli/ui"
	"github.com/lumen-lang/lumen/internal/diagnostics"
)

var (
	historyLimit   int
	historyNoColor bool
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of recent compile runs to show")
	historyCmd.Flags().BoolVar(&historyNoColor, "no-color", false, "Disable colored output")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent compile runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err := diagnostics.Open(cfg.Diagnostics.Driver, config.GetDiagnosticsDSN())
		if err != nil {
			return fmt.Errorf("failed to open diagnostics store: %w", err)
		}
		defer store.Close()

		runs, err := store.Recent(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("no compile runs recorded yet")
			return nil
		}

		table := ui.NewTable(os.Stdout, []string{"COMPILED AT", "STAGE", "SOURCE", "LOCATION", "MESSAGE"}, &ui.TableOptions{NoColor: historyNoColor})
		for _, run := range runs {
			if run.Stage == "ok" {
				table.AddRow(run.CompiledAt.Format("2006-01-02 15:04:05"), run.Stage, run.SourceHash[:12], "", "")
				continue
			}
			table.AddRow(run.CompiledAt.Format("2006-01-02 15:04:05"), run.Stage, run.SourceHash[:12],
				fmt.Sprintf("%d:%d", run.Line, run.Column), run.Message)
		}
		table.Render()
		return nil
	},
}
