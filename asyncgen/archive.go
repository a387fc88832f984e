package asyncgen

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

// Archive stores recorded runs as JSON objects in a Cloud Storage bucket.
type Archive struct {
	client *storage.Client
	bucket string
	logger zerolog.Logger
}

// NewArchive uses an existing client; the caller owns and closes it.
func NewArchive(client *storage.Client, bucket string, logger zerolog.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "Archive").Str("bucket", bucket).Logger(),
	}
}

// Save writes readings to the named object, replacing any previous content.
func (a *Archive) Save(ctx context.Context, object string, readings []Reading) error {
	w := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(readings); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write readings to gs://%s/%s: %w", a.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", a.bucket, object, err)
	}
	a.logger.Info().Str("object", object).Int("readings", len(readings)).Msg("Run archived")
	return nil
}

// Load reads an archived run back.
func (a *Archive) Load(ctx context.Context, object string) ([]Reading, error) {
	r, err := a.client.Bucket(a.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", a.bucket, object, err)
	}
	defer r.Close()

	var readings []Reading
	if err := json.NewDecoder(r).Decode(&readings); err != nil {
		return nil, fmt.Errorf("failed to decode gs://%s/%s: %w", a.bucket, object, err)
	}
	return readings, nil
}

// LoadReplay is Load wrapped in a Replay.
func (a *Archive) LoadReplay(ctx context.Context, object string) (*Replay, error) {
	readings, err := a.Load(ctx, object)
	if err != nil {
		return nil, err
	}
	return NewReplay(readings), nil
}
