package asyncgen

import (
	"context"
)

// Sink receives the readings produced by a Runner.
type Sink interface {
	Connect() error
	Disconnect()
	// Publish returns true only when the reading was accepted by the backend.
	Publish(ctx context.Context, reading Reading) (bool, error)
}
