package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <file>",
	Short: "Show which source columns feed each canonical field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := loadTable(args[0])
		if err != nil {
			return err
		}
		if err := raw.Err(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if m, ok := schema.DetectMission(raw.Columns()); ok {
			fmt.Fprintf(out, "mission: %s (disposition column %s)\n", m, m.DispositionColumn())
		} else {
			fmt.Fprintln(out, "mission: unknown")
		}
		n := schema.NewNormalizer()
		resolved := n.Resolve(raw)
		for _, a := range n.Aliases() {
			src := resolved[a.Field]
			if len(src) == 0 {
				fmt.Fprintf(out, "  ✗ %-15s (none of %s)\n", a.Field, strings.Join(a.Sources, ", "))
				continue
			}
			fmt.Fprintf(out, "  ✓ %-15s %s\n", a.Field, strings.Join(src, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
