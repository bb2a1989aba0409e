package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	scatLabel  string
	scatOutput string
)

var scatterCmd = &cobra.Command{
	Use:   "scatter <file> <x-column> <y-column>",
	Short: "Project rows onto two numeric columns scaled to the plot area",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := parseLabel(scatLabel)
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
		for _, c := range args[1:] {
			if !snap.Table().HasColumn(c) {
				return fmt.Errorf("unknown column: %s", c)
			}
		}
		points := snap.Scatter(l, args[1], args[2])
		b, err := utils.PrettyJSON(points)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), scatOutput, append(b, '\n'), fmt.Sprintf("%d point(s)", len(points)))
	},
}

func init() {
	rootCmd.AddCommand(scatterCmd)
	scatterCmd.Flags().StringVarP(&scatLabel, "label", "l", "", "restrict to one label")
	scatterCmd.Flags().StringVarP(&scatOutput, "output", "o", "", "optional path to write the points (JSON)")
}
