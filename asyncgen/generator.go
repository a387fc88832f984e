// Package asyncgen produces lazy sequences of random values where every value
// is preceded by a fixed wait.
package asyncgen

import (
	"context"
	"iter"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Reading is a single value together with where and when it was produced.
type Reading struct {
	Run       string    `json:"run,omitempty"`
	Position  int       `json:"position"`
	Value     float64   `json:"value"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Generator produces sequences described by its Config. It holds no
// per-sequence state: every call to Values, Readings or Stream starts a
// fresh sequence with its own position.
type Generator struct {
	cfg     Config
	sleeper Sleeper
	random  func() float64
	logger  zerolog.Logger
}

// Option customises a Generator.
type Option func(*Generator)

// WithSleeper replaces the timer based wait.
func WithSleeper(s Sleeper) Option {
	return func(g *Generator) {
		g.sleeper = s
	}
}

// WithRandom replaces the random source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(g *Generator) {
		g.random = fn
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator after validating cfg.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:     cfg,
		sleeper: RealSleeper{},
		random:  rand.Float64,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "Generator").Logger()
	return g, nil
}

// AsyncGenerator returns ten random values in [0, 10), each one produced a
// second after the previous pull.
func AsyncGenerator(ctx context.Context) iter.Seq[float64] {
	g, _ := NewGenerator(DefaultConfig())
	return g.Values(ctx)
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Values returns the lazy sequence of values. Each pull first waits out the
// interval and then draws the next value. Stopping the range loop early, or
// cancelling ctx, ends the sequence without running the remaining waits.
func (g *Generator) Values(ctx context.Context) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for r := range g.Readings(ctx) {
			if !yield(r.Value) {
				return
			}
		}
	}
}

// Readings is Values with position and emission time attached.
func (g *Generator) Readings(ctx context.Context) iter.Seq[Reading] {
	return func(yield func(Reading) bool) {
		for pos := 0; pos < g.cfg.Count; pos++ {
			if err := g.sleeper.Sleep(ctx, g.cfg.Interval); err != nil {
				g.logger.Debug().Err(err).Int("position", pos).Msg("Sequence cancelled while waiting.")
				return
			}
			r := Reading{
				Position:  pos,
				Value:     g.draw(),
				EmittedAt: time.Now(),
			}
			if !yield(r) {
				g.logger.Debug().Int("position", pos).Msg("Consumer stopped early.")
				return
			}
		}
		g.logger.Debug().Int("count", g.cfg.Count).Msg("Sequence exhausted.")
	}
}

// Stream runs the sequence in its own goroutine and delivers values on the
// returned channel, which is closed once the sequence ends. A consumer that
// stops reading early must cancel ctx to release the goroutine.
func (g *Generator) Stream(ctx context.Context) <-chan float64 {
	out := make(chan float64)
	go func() {
		defer close(out)
		for v := range g.Values(ctx) {
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Collect drains a whole sequence.
func (g *Generator) Collect(ctx context.Context) []float64 {
	return slices.Collect(g.Values(ctx))
}

// draw scales the unit draw into [0, UpperBound). Rounding can land exactly
// on the bound, which is then pulled back below it.
func (g *Generator) draw() float64 {
	v := g.random() * g.cfg.UpperBound
	if v >= g.cfg.UpperBound {
		v = math.Nextafter(g.cfg.UpperBound, 0)
	}
	if v < 0 {
		v = 0
	}
	return v
}
