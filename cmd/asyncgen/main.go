package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/illmade-knight/go-async/asyncgen"
	"github.com/illmade-knight/go-async/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	overrides  config.Config
	sinkKind   string
	verbose    bool

	cmd = &cobra.Command{
		Use:   "asyncgen",
		Short: "Emit delayed random sequences",
		Long: "Runs one or more independent sequences of random values, each value\n" +
			"preceded by a fixed wait, and prints or publishes every value.",
		RunE:         run,
		SilenceUsage: true,
	}
)

func init() {
	defaults := config.Default()
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	cmd.Flags().IntVar(&overrides.Generator.Count, "count", defaults.Generator.Count, "Values per sequence")
	cmd.Flags().DurationVar(&overrides.Generator.Interval, "interval", defaults.Generator.Interval, "Wait before each value")
	cmd.Flags().Float64Var(&overrides.Generator.UpperBound, "upper-bound", defaults.Generator.UpperBound, "Exclusive upper bound of values")
	cmd.Flags().IntVarP(&overrides.Invocations, "invocations", "n", defaults.Invocations, "Concurrent sequences")
	cmd.Flags().StringVar(&sinkKind, "sink", defaults.Sink.Kind, "Sink: stdout, memory, mqtt, redis or pubsub")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// resolveConfig layers explicitly set flags over the file (or defaults).
func resolveConfig(c *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := c.Flags()
	if flags.Changed("count") {
		cfg.Generator.Count = overrides.Generator.Count
	}
	if flags.Changed("interval") {
		cfg.Generator.Interval = overrides.Generator.Interval
	}
	if flags.Changed("upper-bound") {
		cfg.Generator.UpperBound = overrides.Generator.UpperBound
	}
	if flags.Changed("invocations") {
		cfg.Invocations = overrides.Invocations
	}
	if flags.Changed("sink") {
		cfg.Sink.Kind = sinkKind
	}
	return cfg, cfg.Validate()
}

func run(c *cobra.Command, _ []string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	sink, err := cfg.Sink.Build(logger)
	if err != nil {
		return err
	}
	if sink == nil {
		sink = &printSink{out: c.OutOrStdout()}
	}

	generator, err := asyncgen.NewGenerator(cfg.Generator, asyncgen.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := asyncgen.NewRunner(generator, sink, logger)
	published, err := runner.Run(ctx, cfg.Invocations)
	if err != nil {
		return err
	}
	if expected := runner.ExpectedReadings(cfg.Invocations); published != expected {
		logger.Warn().Int("published", published).Int("expected", expected).Msg("Not every reading was published")
	}
	return nil
}

// printSink writes one line per reading.
type printSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printSink) Connect() error { return nil }
func (p *printSink) Disconnect()    {}

func (p *printSink) Publish(_ context.Context, r asyncgen.Reading) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintf(p.out, "%s\t%d\t%.6f\n", r.Run, r.Position, r.Value); err != nil {
		return false, err
	}
	return true, nil
}

func main() {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
