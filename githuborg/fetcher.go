package githuborg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MaxPayloadBytes caps how much of a response body is read. Larger bodies
// fail with ErrPayloadTooLarge.
const MaxPayloadBytes = 10 << 20

// Fetcher returns the raw body found at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// GetJSON fetches url and decodes the body into v.
func GetJSON(ctx context.Context, f Fetcher, url string, v any) error {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode payload from %s: %w", url, err)
	}
	return nil
}

// HTTPFetcher is a Fetcher backed by an http.Client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// NewHTTPFetcher wraps client. A nil client gets a 30 second timeout.
func NewHTTPFetcher(client *http.Client, logger zerolog.Logger) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: "go-async-githuborg",
		logger:    logger.With().Str("component", "HTTPFetcher").Logger(),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("Request failed")
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	f.logger.Debug().Str("url", url).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("Fetched")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	if len(body) > MaxPayloadBytes {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrPayloadTooLarge, MaxPayloadBytes)
	}
	return body, nil
}
