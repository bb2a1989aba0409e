package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/report"
	"github.com/KaramelBytes/exoscope/internal/table"
)

var (
	prevOffset int
	prevLimit  int
	prevWidth  int
	prevSort   string
	prevDesc   bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show a page of the raw table with empty rows and columns removed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := openSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := snap.Err(); err != nil {
			return err
		}
		limit := prevLimit
		if !cmd.Flags().Changed("limit") {
			limit = cfg.PreviewRows
		}
		var cols []string
		var rows []table.Row
		if prevSort != "" {
			var all []table.Row
			cols, all = snap.Preview(0, snap.Raw().Len())
			if !slices.Contains(cols, prevSort) {
				return fmt.Errorf("unknown column: %s", prevSort)
			}
			rows = page(table.SortRows(all, prevSort, prevDesc), prevOffset, limit)
		} else {
			cols, rows = snap.Preview(prevOffset, limit)
		}
		out := cmd.OutOrStdout()
		if len(cols) == 0 {
			fmt.Fprintln(out, "(no non-empty columns)")
			return nil
		}
		fmt.Fprint(out, report.PreviewMarkdown(cols, rows, prevWidth))
		fmt.Fprintf(out, "\n%d row(s) from offset %d\n", len(rows), prevOffset)
		return nil
	},
}

func page(rows []table.Row, offset, limit int) []table.Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return nil
	}
	return rows[offset:min(len(rows), offset+limit)]
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&prevOffset, "offset", 0, "first row to show (0-based)")
	previewCmd.Flags().IntVarP(&prevLimit, "limit", "n", 20, "rows per page (default: preview_rows from config)")
	previewCmd.Flags().IntVar(&prevWidth, "max-width", 24, "clip cells to this many characters")
	previewCmd.Flags().StringVar(&prevSort, "sort", "", "sort by this column before paging (nulls last)")
	previewCmd.Flags().BoolVar(&prevDesc, "desc", false, "sort descending")
}
