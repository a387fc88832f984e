package asyncgen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// RedisSink appends each reading as JSON to the list "<prefix>:<run>".
type RedisSink struct {
	opts   *redis.Options
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisSink creates a sink for the Redis server at addr. A positive ttl is
// applied to every run list after each push.
func NewRedisSink(addr, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisSink {
	return &RedisSink{
		opts:   &redis.Options{Addr: addr},
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "RedisSink").Logger(),
	}
}

// Key returns the list holding the readings of a run.
func (s *RedisSink) Key(run string) string {
	return fmt.Sprintf("%s:%s", s.prefix, run)
}

func (s *RedisSink) Connect() error {
	s.client = redis.NewClient(s.opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Error().Err(err).Str("addr", s.opts.Addr).Msg("Failed to ping Redis")
		_ = s.client.Close()
		s.client = nil
		return fmt.Errorf("failed to connect to redis at %s: %w", s.opts.Addr, err)
	}
	s.logger.Info().Str("addr", s.opts.Addr).Msg("Connected to Redis")
	return nil
}

func (s *RedisSink) Disconnect() {
	if s.client == nil {
		return
	}
	if err := s.client.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Redis client")
		return
	}
	s.logger.Info().Msg("Redis client disconnected")
}

func (s *RedisSink) Publish(ctx context.Context, reading Reading) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	payload, err := json.Marshal(reading)
	if err != nil {
		return false, fmt.Errorf("failed to encode reading %d of run %s: %w", reading.Position, reading.Run, err)
	}

	key := s.Key(reading.Run)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis push to %s failed: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("position", reading.Position).Msg("Reading pushed")
	return true, nil
}

// Load reads back the readings stored for a run, in push order.
func (s *RedisSink) Load(ctx context.Context, run string) ([]Reading, error) {
	raw, err := s.client.LRange(ctx, s.Key(run), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range on %s failed: %w", s.Key(run), err)
	}
	readings := make([]Reading, 0, len(raw))
	for _, item := range raw {
		var r Reading
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("failed to decode reading from %s: %w", s.Key(run), err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}
