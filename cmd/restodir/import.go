package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/restodir/restodir/internal/domain/progress"
	"github.com/restodir/restodir/internal/importer"
	"github.com/restodir/restodir/internal/usecase/directory"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import restaurants from a line-delimited extended JSON file",
	Long: `Import reads one JSON document per line and inserts every record in one
unordered batch. Records whose restaurant_id already exists are skipped.
Progress is drawn on stderr and, when status.addr is set, served at
/import/progress.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := importer.ReadFile(args[0])
		if err != nil {
			return err //nolint:wrapcheck // carries file and line
		}

		ctx := cmd.Context()
		if err := state.connect(ctx); err != nil {
			return err
		}
		stop := state.startStatusServer()
		defer stop()

		type result struct {
			report directory.ImportReport
			err    error
		}
		done := make(chan result, 1)
		go func() {
			r, err := state.dir.BulkImport(ctx, records)
			done <- result{r, err}
		}()

		ticker := time.NewTicker(state.cfg.Import.ProgressInterval())
		defer ticker.Stop()
		for {
			select {
			case res := <-done:
				drawProgress(cmd.ErrOrStderr(), state.dir.Progress())
				fmt.Fprintln(cmd.ErrOrStderr())
				if res.err != nil {
					return res.err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d records (%d duplicates, %d invalid)\n",
					res.report.Inserted, res.report.Total, res.report.Duplicates, res.report.Invalid)
				return nil
			case <-ticker.C:
				drawProgress(cmd.ErrOrStderr(), state.dir.Progress())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

const barWidth = 40

// drawProgress redraws a one-line progress bar in place.
func drawProgress(w io.Writer, s progress.Snapshot) {
	filled := int(s.Fraction * barWidth)
	fmt.Fprintf(w, "\r[%s%s] %3.0f%% %s",
		strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), s.Fraction*100, s.State)
}
