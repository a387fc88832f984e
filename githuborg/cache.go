package githuborg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// CachedFetcher serves payloads from Redis and falls back to next on a miss.
// A Redis outage degrades to uncached fetches instead of failing them.
type CachedFetcher struct {
	next   Fetcher
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedFetcher caches bodies fetched by next under "<prefix>:<url>" for ttl.
func NewCachedFetcher(next Fetcher, rdb *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "CachedFetcher").Logger(),
	}
}

func (f *CachedFetcher) key(url string) string {
	return fmt.Sprintf("%s:%s", f.prefix, url)
}

func (f *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := f.key(url)
	body, err := f.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		f.logger.Debug().Str("url", url).Msg("Cache hit")
		return body, nil
	case errors.Is(err, redis.Nil):
		f.logger.Debug().Str("url", url).Msg("Cache miss")
	default:
		f.logger.Warn().Err(err).Str("url", url).Msg("Cache read failed, fetching directly")
	}

	body, err = f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := f.rdb.Set(ctx, key, body, f.ttl).Err(); err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("Cache write failed")
	}
	return body, nil
}

// Invalidate drops the cached payload for url.
func (f *CachedFetcher) Invalidate(ctx context.Context, url string) error {
	return f.rdb.Del(ctx, f.key(url)).Err()
}
