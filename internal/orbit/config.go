// Package orbit maps classified rows to deterministic orbital rendering
// parameters.
package orbit

import (
	"fmt"
	"math"
)

// Config holds the fixed constants of the projection. Lengths are in scene
// units and speeds in radians per frame.
type Config struct {
	MaxBodies     int     `mapstructure:"max_bodies" yaml:"max_bodies"`
	DefaultRadius float64 `mapstructure:"default_radius" yaml:"default_radius"`
	MinRadius     float64 `mapstructure:"min_radius" yaml:"min_radius"`
	RadiusScale   float64 `mapstructure:"radius_scale" yaml:"radius_scale"`
	BaseOffset    float64 `mapstructure:"base_offset" yaml:"base_offset"`
	Spacing       float64 `mapstructure:"spacing" yaml:"spacing"`
	Exponent      float64 `mapstructure:"exponent" yaml:"exponent"`
	SpeedMin      float64 `mapstructure:"speed_min" yaml:"speed_min"`
	SpeedMax      float64 `mapstructure:"speed_max" yaml:"speed_max"`
	Seed          uint64  `mapstructure:"seed" yaml:"seed"`
}

// DefaultConfig returns the constants used by the viewer.
func DefaultConfig() Config {
	return Config{
		MaxBodies:     50,
		DefaultRadius: 0.3,
		MinRadius:     0.1,
		RadiusScale:   0.1,
		BaseOffset:    2,
		Spacing:       0.6,
		Exponent:      0.5,
		SpeedMin:      0.002,
		SpeedMax:      0.01,
		Seed:          42,
	}
}

// Validate checks that the constants produce finite, monotonic geometry.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"default_radius": c.DefaultRadius,
		"min_radius":     c.MinRadius,
		"radius_scale":   c.RadiusScale,
		"base_offset":    c.BaseOffset,
		"spacing":        c.Spacing,
		"exponent":       c.Exponent,
		"speed_min":      c.SpeedMin,
		"speed_max":      c.SpeedMax,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("orbit %s must be finite", name)
		}
	}
	switch {
	case c.MaxBodies < 1:
		return fmt.Errorf("orbit max_bodies must be at least 1, got %d", c.MaxBodies)
	case c.MinRadius <= 0:
		return fmt.Errorf("orbit min_radius must be positive, got %g", c.MinRadius)
	case c.DefaultRadius < c.MinRadius:
		return fmt.Errorf("orbit default_radius %g is below min_radius %g", c.DefaultRadius, c.MinRadius)
	case c.RadiusScale <= 0:
		return fmt.Errorf("orbit radius_scale must be positive, got %g", c.RadiusScale)
	case c.BaseOffset < 0:
		return fmt.Errorf("orbit base_offset must not be negative, got %g", c.BaseOffset)
	case c.Spacing <= 0:
		return fmt.Errorf("orbit spacing must be positive, got %g", c.Spacing)
	case c.Exponent <= 0:
		return fmt.Errorf("orbit exponent must be positive, got %g", c.Exponent)
	case c.SpeedMin <= 0 || c.SpeedMax < c.SpeedMin:
		return fmt.Errorf("orbit speed range [%g, %g] is invalid", c.SpeedMin, c.SpeedMax)
	}
	return nil
}
