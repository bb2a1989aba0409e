package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	orbLabel  string
	orbOutput string
)

var orbitsCmd = &cobra.Command{
	Use:   "orbits <file>",
	Short: "Project one label's planets into an orbital system",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := label.Canonicalize(orbLabel)
		if l == label.Unknown {
			return fmt.Errorf("--label must be CONFIRMED, CANDIDATE or FALSE_POSITIVE, got %q", orbLabel)
		}
		snap, err := openSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := snap.Err(); err != nil {
			return err
		}
		proj := snap.Orbits(l)
		if proj.NoSystem {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s objects do not form a planetary system\n", l.Display())
		}
		if proj.Truncated > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %d body(ies) beyond orbit_max_bodies were left out\n", proj.Truncated)
		}
		b, err := utils.PrettyJSON(proj)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), orbOutput, append(b, '\n'), fmt.Sprintf("%d body(ies)", len(proj.Bodies)))
	},
}

func init() {
	rootCmd.AddCommand(orbitsCmd)
	orbitsCmd.Flags().StringVarP(&orbLabel, "label", "l", "CONFIRMED", "label to project")
	orbitsCmd.Flags().StringVarP(&orbOutput, "output", "o", "", "optional path to write the projection (JSON)")
}
