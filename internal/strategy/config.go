package strategy

import (
	"errors"
	"fmt"
)

// Default tuning values.
const (
	DefaultRaiseThreshold   = 0.6
	DefaultCallThreshold    = 0.4
	DefaultFoldThreshold    = 0.3
	DefaultBluffProbability = 0.1
	DefaultAggressiveness   = 0.5
)

// Config holds the tunable parameters of an Engine. All probabilities and
// thresholds are in [0,1].
type Config struct {
	RaiseThreshold   float64
	CallThreshold    float64
	FoldThreshold    float64
	BluffProbability float64
	Aggressiveness   float64

	// AdaptiveLearning enables Engine.Adapt after each recorded hand.
	AdaptiveLearning bool
}

// DefaultConfig returns the stock configuration with adaptive learning off.
func DefaultConfig() Config {
	return Config{
		RaiseThreshold:   DefaultRaiseThreshold,
		CallThreshold:    DefaultCallThreshold,
		FoldThreshold:    DefaultFoldThreshold,
		BluffProbability: DefaultBluffProbability,
		Aggressiveness:   DefaultAggressiveness,
	}
}

// Validate checks that every parameter lies in [0,1].
func (c Config) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %g", name, v))
		}
	}
	check("raise_threshold", c.RaiseThreshold)
	check("call_threshold", c.CallThreshold)
	check("fold_threshold", c.FoldThreshold)
	check("bluff_probability", c.BluffProbability)
	check("aggressiveness", c.Aggressiveness)
	return errors.Join(errs...)
}

// Coherent reports whether the thresholds are ordered raise >= call >= fold.
// Incoherent thresholds still work, the decision table just skips the bands
// that collapse.
func (c Config) Coherent() bool {
	return c.RaiseThreshold >= c.CallThreshold && c.CallThreshold >= c.FoldThreshold
}
