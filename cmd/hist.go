package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/report"
	"github.com/KaramelBytes/exoscope/internal/stats"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	histLabel    string
	histBins     string
	histBarWidth int
	histJSON     bool
)

var histCmd = &cobra.Command{
	Use:   "hist <file> <column>",
	Short: "Bin one numeric column into a histogram",
	Long: `Bin one numeric column into a histogram.

Columns are canonical names such as period, radius, depth, teq or snr.
--bins takes a fixed count or "sqrt" for the square-root rule; the default
comes from histogram_bins in the config.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := parseLabel(histLabel)
		if err != nil {
			return err
		}
		snap, err := openSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := snap.Err(); err != nil {
			return err
		}
		column := args[1]
		if !snap.Table().HasColumn(column) {
			return fmt.Errorf("unknown column: %s (numeric columns: %v)", column, snap.NumericColumns())
		}
		var bins []stats.HistogramBin
		if histBins != "" {
			policy, err := stats.ParseBinPolicy(histBins)
			if err != nil {
				return err
			}
			bins = snap.HistogramWith(l, column, policy)
		} else {
			bins = snap.Histogram(l, column)
		}
		if histJSON {
			b, err := utils.PrettyJSON(bins)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), report.HistogramText(column, bins, histBarWidth))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(histCmd)
	histCmd.Flags().StringVarP(&histLabel, "label", "l", "", "restrict to one label")
	histCmd.Flags().StringVar(&histBins, "bins", "", "bin count or 'sqrt' (default: histogram_bins from config)")
	histCmd.Flags().IntVar(&histBarWidth, "bar-width", 40, "width of the longest bar")
	histCmd.Flags().BoolVar(&histJSON, "json", false, "emit bins as JSON")
}
