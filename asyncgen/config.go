package asyncgen

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultCount is the number of values a sequence produces.
	DefaultCount = 10
	// DefaultInterval is the wait before each value.
	DefaultInterval = time.Second
	// DefaultUpperBound is the exclusive upper bound of produced values.
	DefaultUpperBound = 10.0
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config controls the shape of a produced sequence.
type Config struct {
	Count      int           `yaml:"count"`
	Interval   time.Duration `yaml:"interval"`
	UpperBound float64       `yaml:"upper_bound"`
}

// DefaultConfig returns ten values in [0, 10), one second apart.
func DefaultConfig() Config {
	return Config{
		Count:      DefaultCount,
		Interval:   DefaultInterval,
		UpperBound: DefaultUpperBound,
	}
}

// Validate rejects configs that cannot produce a sequence. The upper bound
// must be positive and finite.
func (c Config) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %s", ErrInvalidConfig, c.Interval)
	}
	if !(c.UpperBound > 0) || math.IsInf(c.UpperBound, 0) {
		return fmt.Errorf("%w: upper bound must be positive and finite, got %g", ErrInvalidConfig, c.UpperBound)
	}
	return nil
}
