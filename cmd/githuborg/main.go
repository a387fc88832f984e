package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/illmade-knight/go-async/config"
	"github.com/illmade-knight/go-async/githuborg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	license    string
	baseURL    string
	redisAddr  string
	verbose    bool

	cmd = &cobra.Command{
		Use:          "githuborg [org]",
		Short:        "List the public repositories of a GitHub organization",
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}
)

func init() {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	cmd.Flags().StringVarP(&license, "license", "l", "", "Only list repositories with this license key (e.g. apache-2.0)")
	cmd.Flags().StringVar(&baseURL, "base-url", githuborg.DefaultBaseURL, "GitHub API base URL")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Cache API responses in this Redis server")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func run(c *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := config.Default().Github
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded.Github
	}
	if len(args) == 1 {
		cfg.Org = args[0]
	}
	if c.Flags().Changed("license") {
		cfg.License = license
	}
	if c.Flags().Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if c.Flags().Changed("redis-addr") {
		cfg.Cache.Addr = redisAddr
	}
	if cfg.Org == "" {
		return fmt.Errorf("an organization is required, as argument or github.org in the config")
	}

	var fetcher githuborg.Fetcher = githuborg.NewHTTPFetcher(nil, logger)
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		defer rdb.Close()
		fetcher = githuborg.NewCachedFetcher(fetcher, rdb, cfg.Cache.Prefix, cfg.Cache.TTL, logger)
	}

	client := githuborg.NewClient(cfg.Org,
		githuborg.WithBaseURL(cfg.BaseURL),
		githuborg.WithFetcher(fetcher),
		githuborg.WithLogger(logger))

	ctx, cancel := context.WithTimeout(c.Context(), time.Minute)
	defer cancel()
	repos, err := client.PublicRepos(ctx, cfg.License)
	if err != nil {
		return err
	}
	for _, name := range repos {
		fmt.Fprintln(c.OutOrStdout(), name)
	}
	logger.Debug().Int("repos", len(repos)).Str("license", cfg.License).Msg("Listed repositories")
	return nil
}

func main() {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
