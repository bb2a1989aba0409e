package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/exoscope/internal/config"
	"github.com/KaramelBytes/exoscope/internal/dataset"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/KaramelBytes/exoscope/internal/schema"
	"github.com/KaramelBytes/exoscope/internal/table"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides applied on top of the loaded config when set
	flagServiceURL     string
	flagHTTPTimeoutSec int
	flagLogFormat      string
	flagLabelColumn    string
	flagMission        string
	flagSheet          string

	// Loaded configuration
	cfg       *cfgpkg.Global
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "exoscope",
	Short: "exoscope: explore and retrain exoplanet classification results",
	Long: `exoscope loads classified exoplanet catalogs (Kepler KOI, K2, TESS TOI) as
returned by the classification service, normalizes them into one schema and
derives counts, statistics, histograms, scatter plots and orbital views.
It can also export predictions and ask the service to retrain its model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.exoscope/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug logging")
	f.StringVar(&flagServiceURL, "service-url", "", "classification service base URL (overrides config)")
	f.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	f.StringVar(&flagLogFormat, "log-format", "", "log format: text | json (overrides config)")
	f.StringVar(&flagLabelColumn, "label-column", "", "column holding labels (default: Predicted_Disposition, then the mission disposition)")
	f.StringVar(&flagMission, "mission", "", "read labels from a mission's catalog disposition column: kepler | tess | k2")
	f.StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to load (default: first sheet)")
}

func loadConfig() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config and help still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("service-url") && flagServiceURL != "" {
		cfg.ServiceURL = flagServiceURL
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if f.Changed("label-column") {
		cfg.LabelColumn = flagLabelColumn
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	closer, err := logging.Setup(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging setup failed: %v\n", err)
		return
	}
	logCloser = closer
}

// currentConfig returns the loaded config, loading it on first use when a
// command runs outside Execute (tests).
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// sessionOptions builds dataset options from the config.
func sessionOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opts := dataset.DefaultOptions()
	bins, err := c.BinPolicy()
	if err != nil {
		return opts, err
	}
	opts.Bins = bins
	opts.Area = c.PlotArea()
	opts.Orbit = c.Orbit()
	opts.LabelColumn = c.LabelColumn
	if flagMission != "" && flagLabelColumn == "" {
		m, err := schema.ParseMission(flagMission)
		if err != nil {
			return opts, err
		}
		opts.LabelColumn = m.DispositionColumn()
	}
	return opts, nil
}

// loadTable reads path by extension; "-" reads an ingestion response from stdin.
func loadTable(path string) (*table.Table, error) {
	switch {
	case path == "-":
		return table.DecodeReader(os.Stdin), nil
	case flagSheet != "":
		return table.LoadXLSX(path, flagSheet)
	default:
		return table.Load(path)
	}
}

// openSnapshot loads path and builds a snapshot under the current config.
func openSnapshot(path string) (*dataset.Snapshot, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, err
	}
	opts, err := sessionOptions(c)
	if err != nil {
		return nil, err
	}
	raw, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	return dataset.Open(raw, opts)
}

// parseLabel accepts any disposition token; "" and "all" select every row.
func parseLabel(s string) (label.Label, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return dataset.AllLabels, nil
	}
	l := label.Canonicalize(s)
	if l == label.Unknown && !strings.EqualFold(s, "unknown") {
		return "", fmt.Errorf("unrecognized label: %s", s)
	}
	return l, nil
}

// writeOutput writes data to path, or to out when path is empty.
func writeOutput(out io.Writer, path string, data []byte, what string) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(out, "✓ Wrote %s to %s\n", what, path)
	return nil
}
