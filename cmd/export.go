package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	expFormat string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the catalog with its predicted labels as CSV or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(expFormat)
		if format == "" && expOutput != "" {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(expOutput)), ".")
		}
		if format == "" {
			format = "csv"
		}
		if format == "xlsx" && expOutput == "" {
			return fmt.Errorf("--output is required for xlsx")
		}
		snap, err := openSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := snap.Err(); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := snap.Export(&buf, format); err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), expOutput, buf.Bytes(), fmt.Sprintf("%d row(s)", snap.Set().Len()))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expFormat, "format", "f", "", "csv | xlsx (default: from --output extension, else csv)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default: stdout, csv only)")
}
