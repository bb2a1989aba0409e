// Package retrain validates hyperparameters for the external retraining
// service and drives its request/response contract.
package retrain

import (
	"fmt"
	"math"
)

// Bounds accepted by Validate.
const (
	MaxEstimators = 5000
	MaxDepth      = 64
)

// Config is the retraining request body.
type Config struct {
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate" yaml:"learning_rate"`
	NEstimators  int     `json:"n_estimators" mapstructure:"n_estimators" yaml:"n_estimators"`
	MaxDepth     int     `json:"max_depth" mapstructure:"max_depth" yaml:"max_depth"`
	Threshold    float64 `json:"threshold" mapstructure:"threshold" yaml:"threshold"`
}

// DefaultConfig mirrors the service's own defaults.
func DefaultConfig() Config {
	return Config{LearningRate: 0.05, NEstimators: 500, MaxDepth: 6, Threshold: 0.6}
}

// ValidationError names the first field that is out of bounds.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every field against its bounds, in request order.
func (c Config) Validate() error {
	if math.IsNaN(c.LearningRate) || c.LearningRate <= 0 || c.LearningRate > 1 {
		return &ValidationError{Field: "learning_rate", Value: c.LearningRate, Reason: "must be in (0, 1]"}
	}
	if c.NEstimators < 1 || c.NEstimators > MaxEstimators {
		return &ValidationError{Field: "n_estimators", Value: c.NEstimators, Reason: fmt.Sprintf("must be in [1, %d]", MaxEstimators)}
	}
	if c.MaxDepth < 1 || c.MaxDepth > MaxDepth {
		return &ValidationError{Field: "max_depth", Value: c.MaxDepth, Reason: fmt.Sprintf("must be in [1, %d]", MaxDepth)}
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return &ValidationError{Field: "threshold", Value: c.Threshold, Reason: "must be in [0, 1]"}
	}
	return nil
}
