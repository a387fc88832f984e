package githuborg

import (
	"errors"
	"fmt"
)

// ErrNoReposURL is returned when an organization payload carries no repos_url.
var ErrNoReposURL = errors.New("organization payload has no repos_url")

// ErrPayloadTooLarge is returned by HTTPFetcher for bodies over MaxPayloadBytes.
var ErrPayloadTooLarge = errors.New("payload too large")

// StatusError is returned by HTTPFetcher for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
