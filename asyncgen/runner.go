package asyncgen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Runner drives several independent sequences at once and hands every
// reading to a Sink.
type Runner struct {
	generator      *Generator
	sink           Sink
	logger         zerolog.Logger
	publishedCount int64
}

// NewRunner creates a new Runner.
func NewRunner(generator *Generator, sink Sink, logger zerolog.Logger) *Runner {
	return &Runner{
		generator: generator,
		sink:      sink,
		logger:    logger.With().Str("component", "Runner").Logger(),
	}
}

// ExpectedReadings is the number of readings a full run of n sequences publishes.
func (r *Runner) ExpectedReadings(invocations int) int {
	if invocations <= 0 {
		return 0
	}
	return invocations * r.generator.Config().Count
}

// Run starts the given number of sequences, each in its own goroutine, and
// returns the number of successfully published readings once all of them
// are exhausted or ctx is done.
func (r *Runner) Run(ctx context.Context, invocations int) (int, error) {
	atomic.StoreInt64(&r.publishedCount, 0)
	if invocations <= 0 {
		return 0, fmt.Errorf("invocations must be positive, got %d", invocations)
	}
	r.logger.Info().Int("invocations", invocations).Int("count", r.generator.Config().Count).Msg("Starting...")

	if err := r.sink.Connect(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to connect sink")
		return 0, err
	}
	defer r.sink.Disconnect()

	var wg sync.WaitGroup
	for i := 0; i < invocations; i++ {
		wg.Add(1)
		go func(run string) {
			defer wg.Done()
			r.runSequence(ctx, run)
		}(uuid.NewString())
	}

	wg.Wait()
	finalCount := int(atomic.LoadInt64(&r.publishedCount))
	r.logger.Info().Int("successful_publishes", finalCount).Msg("Finished")
	return finalCount, nil
}

// runSequence publishes one sequence. Failed publishes are logged and the
// sequence carries on; the count only includes acknowledged readings.
func (r *Runner) runSequence(ctx context.Context, run string) {
	logger := r.logger.With().Str("run", run).Logger()
	logger.Debug().Msg("Sequence starting.")

	for reading := range r.generator.Readings(ctx) {
		reading.Run = run
		if success, err := r.sink.Publish(ctx, reading); err != nil {
			logger.Error().Err(err).Int("position", reading.Position).Msg("Failed to publish reading.")
		} else if success {
			atomic.AddInt64(&r.publishedCount, 1)
		}
	}
	logger.Debug().Msg("Sequence stopped.")
}
