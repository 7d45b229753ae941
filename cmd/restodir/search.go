package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/restodir/restodir/internal/domain/geo"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

var (
	searchCond  domrest.Condition
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List restaurants matching all given fields, nearest first",
	Long: `Search matches every non-empty field as a case-insensitive substring and
prints the matches ordered by distance from the reference point. Records with
no coordinate are listed last.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := state.connect(ctx); err != nil {
			return err
		}
		entries, err := state.dir.Search(ctx, searchCond)
		if err != nil {
			return err //nolint:wrapcheck // already wrapped
		}
		printEntries(cmd.OutOrStdout(), entries, searchLimit)
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchCond.Name, "name", "", "match on name")
	f.StringVar(&searchCond.Borough, "borough", "", "match on borough")
	f.StringVar(&searchCond.Street, "street", "", "match on street")
	f.StringVar(&searchCond.Zipcode, "zipcode", "", "match on zipcode")
	f.IntVar(&searchLimit, "limit", 0, "print at most this many rows (0 = all)")

	rootCmd.AddCommand(searchCmd)
}

// printEntries writes a numbered result table. limit <= 0 prints everything.
func printEntries(w io.Writer, entries []domrest.Entry, limit int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tDISTANCE")
	for i, e := range entries {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, e.ID, e.Name, distanceLabel(e.Distance))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d result(s)\n", len(entries))
}

func distanceLabel(km float64) string {
	if km == geo.UnknownDistance {
		return "-"
	}
	return geo.FormatKm(km)
}
