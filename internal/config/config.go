package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/KaramelBytes/exoscope/internal/orbit"
	"github.com/KaramelBytes/exoscope/internal/retrain"
	"github.com/KaramelBytes/exoscope/internal/stats"
)

// dirName is the per-user config directory under $HOME.
const dirName = ".exoscope"

// Global configuration structure.
type Global struct {
	// Classification service
	ServiceURL     string `mapstructure:"service_url" yaml:"service_url"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogOutput string `mapstructure:"log_output" yaml:"log_output"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file,omitempty"`

	// Views
	LabelColumn   string  `mapstructure:"label_column" yaml:"label_column,omitempty"`
	PreviewRows   int     `mapstructure:"preview_rows" yaml:"preview_rows"`
	HistogramBins string  `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	PlotWidth     float64 `mapstructure:"plot_width" yaml:"plot_width"`
	PlotHeight    float64 `mapstructure:"plot_height" yaml:"plot_height"`

	// Orbital projection constants
	OrbitMaxBodies     int     `mapstructure:"orbit_max_bodies" yaml:"orbit_max_bodies"`
	OrbitDefaultRadius float64 `mapstructure:"orbit_default_radius" yaml:"orbit_default_radius"`
	OrbitMinRadius     float64 `mapstructure:"orbit_min_radius" yaml:"orbit_min_radius"`
	OrbitRadiusScale   float64 `mapstructure:"orbit_radius_scale" yaml:"orbit_radius_scale"`
	OrbitBaseOffset    float64 `mapstructure:"orbit_base_offset" yaml:"orbit_base_offset"`
	OrbitSpacing       float64 `mapstructure:"orbit_spacing" yaml:"orbit_spacing"`
	OrbitExponent      float64 `mapstructure:"orbit_exponent" yaml:"orbit_exponent"`
	OrbitSpeedMin      float64 `mapstructure:"orbit_speed_min" yaml:"orbit_speed_min"`
	OrbitSpeedMax      float64 `mapstructure:"orbit_speed_max" yaml:"orbit_speed_max"`
	OrbitSeed          uint64  `mapstructure:"orbit_seed" yaml:"orbit_seed"`

	// Retraining defaults
	RetrainLearningRate float64 `mapstructure:"retrain_learning_rate" yaml:"retrain_learning_rate"`
	RetrainNEstimators  int     `mapstructure:"retrain_n_estimators" yaml:"retrain_n_estimators"`
	RetrainMaxDepth     int     `mapstructure:"retrain_max_depth" yaml:"retrain_max_depth"`
	RetrainThreshold    float64 `mapstructure:"retrain_threshold" yaml:"retrain_threshold"`
}

// Dir returns ~/.exoscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.exoscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	oc := orbit.DefaultConfig()
	rc := retrain.DefaultConfig()
	lc := logging.DefaultConfig()

	v.SetDefault("service_url", "http://127.0.0.1:8000")
	v.SetDefault("http_timeout_sec", int(retrain.DefaultTimeout/time.Second))
	v.SetDefault("log_level", lc.Level)
	v.SetDefault("log_format", lc.Format)
	v.SetDefault("log_output", lc.Output)
	v.SetDefault("log_file", "")
	v.SetDefault("label_column", "")
	v.SetDefault("preview_rows", 20)
	v.SetDefault("histogram_bins", stats.DefaultPolicy().String())
	v.SetDefault("plot_width", stats.DefaultArea.Width)
	v.SetDefault("plot_height", stats.DefaultArea.Height)

	v.SetDefault("orbit_max_bodies", oc.MaxBodies)
	v.SetDefault("orbit_default_radius", oc.DefaultRadius)
	v.SetDefault("orbit_min_radius", oc.MinRadius)
	v.SetDefault("orbit_radius_scale", oc.RadiusScale)
	v.SetDefault("orbit_base_offset", oc.BaseOffset)
	v.SetDefault("orbit_spacing", oc.Spacing)
	v.SetDefault("orbit_exponent", oc.Exponent)
	v.SetDefault("orbit_speed_min", oc.SpeedMin)
	v.SetDefault("orbit_speed_max", oc.SpeedMax)
	v.SetDefault("orbit_seed", oc.Seed)

	v.SetDefault("retrain_learning_rate", rc.LearningRate)
	v.SetDefault("retrain_n_estimators", rc.NEstimators)
	v.SetDefault("retrain_max_depth", rc.MaxDepth)
	v.SetDefault("retrain_threshold", rc.Threshold)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EXOSCOPE")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// the file is optional; a present but unreadable one is an error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// HTTPTimeout is the retrain call timeout.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// Logging returns the logger settings.
func (c *Global) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, Output: c.LogOutput, FilePath: c.LogFile}
}

// BinPolicy parses histogram_bins.
func (c *Global) BinPolicy() (stats.BinPolicy, error) {
	return stats.ParseBinPolicy(c.HistogramBins)
}

// PlotArea is the scatter target area.
func (c *Global) PlotArea() stats.PlotArea {
	return stats.PlotArea{Width: c.PlotWidth, Height: c.PlotHeight}
}

// Orbit returns the orbital projection constants.
func (c *Global) Orbit() orbit.Config {
	return orbit.Config{
		MaxBodies:     c.OrbitMaxBodies,
		DefaultRadius: c.OrbitDefaultRadius,
		MinRadius:     c.OrbitMinRadius,
		RadiusScale:   c.OrbitRadiusScale,
		BaseOffset:    c.OrbitBaseOffset,
		Spacing:       c.OrbitSpacing,
		Exponent:      c.OrbitExponent,
		SpeedMin:      c.OrbitSpeedMin,
		SpeedMax:      c.OrbitSpeedMax,
		Seed:          c.OrbitSeed,
	}
}

// Retrain returns the default retraining hyperparameters.
func (c *Global) Retrain() retrain.Config {
	return retrain.Config{
		LearningRate: c.RetrainLearningRate,
		NEstimators:  c.RetrainNEstimators,
		MaxDepth:     c.RetrainMaxDepth,
		Threshold:    c.RetrainThreshold,
	}
}

// Validate checks the values that are parsed lazily elsewhere.
func (c *Global) Validate() error {
	if _, _, err := logging.NewHandler(logging.Config{Level: c.LogLevel, Format: c.LogFormat}); err != nil {
		return err
	}
	if _, err := c.BinPolicy(); err != nil {
		return err
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.PlotWidth, c.PlotHeight)
	}
	if err := c.Orbit().Validate(); err != nil {
		return err
	}
	if err := c.Retrain().Validate(); err != nil {
		return fmt.Errorf("retrain defaults: %w", err)
	}
	return nil
}

type setter func(c *Global, val string) error

func intSetter(dst func(*Global) *int, floor int) setter {
	return func(c *Global, val string) error {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || i < floor {
			return fmt.Errorf("invalid int: %v", val)
		}
		*dst(c) = i
		return nil
	}
}

func floatSetter(dst func(*Global) *float64) setter {
	return func(c *Global, val string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("invalid float: %v", val)
		}
		*dst(c) = f
		return nil
	}
}

func stringSetter(dst func(*Global) *string) setter {
	return func(c *Global, val string) error {
		*dst(c) = strings.TrimSpace(val)
		return nil
	}
}

var setters = map[string]setter{
	"service_url":      stringSetter(func(c *Global) *string { return &c.ServiceURL }),
	"http_timeout_sec": intSetter(func(c *Global) *int { return &c.HTTPTimeoutSec }, 1),
	"log_level":        stringSetter(func(c *Global) *string { return &c.LogLevel }),
	"log_format":       stringSetter(func(c *Global) *string { return &c.LogFormat }),
	"log_output":       stringSetter(func(c *Global) *string { return &c.LogOutput }),
	"log_file":         stringSetter(func(c *Global) *string { return &c.LogFile }),
	"label_column":     stringSetter(func(c *Global) *string { return &c.LabelColumn }),
	"preview_rows":     intSetter(func(c *Global) *int { return &c.PreviewRows }, 1),
	"histogram_bins":   stringSetter(func(c *Global) *string { return &c.HistogramBins }),
	"plot_width":       floatSetter(func(c *Global) *float64 { return &c.PlotWidth }),
	"plot_height":      floatSetter(func(c *Global) *float64 { return &c.PlotHeight }),

	"orbit_max_bodies":     intSetter(func(c *Global) *int { return &c.OrbitMaxBodies }, 1),
	"orbit_default_radius": floatSetter(func(c *Global) *float64 { return &c.OrbitDefaultRadius }),
	"orbit_min_radius":     floatSetter(func(c *Global) *float64 { return &c.OrbitMinRadius }),
	"orbit_radius_scale":   floatSetter(func(c *Global) *float64 { return &c.OrbitRadiusScale }),
	"orbit_base_offset":    floatSetter(func(c *Global) *float64 { return &c.OrbitBaseOffset }),
	"orbit_spacing":        floatSetter(func(c *Global) *float64 { return &c.OrbitSpacing }),
	"orbit_exponent":       floatSetter(func(c *Global) *float64 { return &c.OrbitExponent }),
	"orbit_speed_min":      floatSetter(func(c *Global) *float64 { return &c.OrbitSpeedMin }),
	"orbit_speed_max":      floatSetter(func(c *Global) *float64 { return &c.OrbitSpeedMax }),

	"orbit_seed": func(c *Global, val string) error {
		u, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid uint: %v", val)
		}
		c.OrbitSeed = u
		return nil
	},

	"retrain_learning_rate": floatSetter(func(c *Global) *float64 { return &c.RetrainLearningRate }),
	"retrain_n_estimators":  intSetter(func(c *Global) *int { return &c.RetrainNEstimators }, 1),
	"retrain_max_depth":     intSetter(func(c *Global) *int { return &c.RetrainMaxDepth }, 1),
	"retrain_threshold":     floatSetter(func(c *Global) *float64 { return &c.RetrainThreshold }),
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	out := make([]string, 0, len(setters))
	for k := range setters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set parses val into key and re-validates the result. On error c is unchanged.
func (c *Global) Set(key, val string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key: %s", key)
	}
	next := *c
	if err := set(&next, val); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*c = next
	return nil
}
