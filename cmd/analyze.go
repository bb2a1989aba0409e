package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/report"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	sumOutputPath string
	sumLabel      string
	sumColumns    []string
	sumSampleRows int
	sumMaxWidth   int
	sumJSON       bool
)

var summaryCmd = &cobra.Command{
	Use:     "summary <file>",
	Aliases: []string{"analyze"},
	Short:   "Summarize label counts and column statistics of a classified catalog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		l, err := parseLabel(sumLabel)
		if err != nil {
			return err
		}
		snap, err := openSnapshot(path)
		if err != nil {
			return err
		}
		rep := report.Build(snap, report.Options{
			Name:     path,
			Label:    l,
			Columns:  sumColumns,
			MaxRows:  sumSampleRows,
			MaxWidth: sumMaxWidth,
		})

		var out []byte
		if sumJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(rep.Markdown())
		}
		if err := writeOutput(cmd.OutOrStdout(), sumOutputPath, out, "summary"); err != nil {
			return err
		}
		if err := snap.Err(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summaryCmd.Flags().StringVarP(&sumLabel, "label", "l", "", "restrict statistics to one label (CONFIRMED, CANDIDATE, FALSE_POSITIVE, UNKNOWN)")
	summaryCmd.Flags().StringSliceVar(&sumColumns, "columns", nil, "columns to summarize (default: every canonical measurement)")
	summaryCmd.Flags().IntVar(&sumSampleRows, "sample-rows", 5, "number of head rows to include")
	summaryCmd.Flags().IntVar(&sumMaxWidth, "max-width", 40, "clip sample cells to this many characters")
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit JSON instead of text")
}
