package asyncgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// PubsubSink publishes readings to a Cloud Pub/Sub topic. The run id and
// position travel as message attributes so subscribers can filter on them.
type PubsubSink struct {
	projectID string
	topicID   string
	opts      []option.ClientOption
	client    *pubsub.Client
	topic     *pubsub.Topic
	logger    zerolog.Logger
}

// NewPubsubSink creates a sink for an existing topic. opts are passed to the
// Pub/Sub client, which is how the emulator is targeted in tests.
func NewPubsubSink(projectID, topicID string, logger zerolog.Logger, opts ...option.ClientOption) *PubsubSink {
	return &PubsubSink{
		projectID: projectID,
		topicID:   topicID,
		opts:      opts,
		logger:    logger.With().Str("component", "PubsubSink").Str("topic", topicID).Logger(),
	}
}

func (s *PubsubSink) Connect() error {
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, s.projectID, s.opts...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create Pub/Sub client")
		return fmt.Errorf("failed to create pubsub client for project %s: %w", s.projectID, err)
	}

	topic := client.Topic(s.topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to check topic %s: %w", s.topicID, err)
	}
	if !exists {
		_ = client.Close()
		return fmt.Errorf("topic %s does not exist in project %s", s.topicID, s.projectID)
	}

	s.client = client
	s.topic = topic
	s.logger.Info().Str("project", s.projectID).Msg("Connected to Pub/Sub")
	return nil
}

func (s *PubsubSink) Disconnect() {
	if s.topic != nil {
		s.topic.Stop()
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Pub/Sub client")
		}
	}
}

// Publish blocks until the server has assigned a message id.
func (s *PubsubSink) Publish(ctx context.Context, reading Reading) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	payload, err := json.Marshal(reading)
	if err != nil {
		return false, fmt.Errorf("failed to encode reading %d of run %s: %w", reading.Position, reading.Run, err)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"run":      reading.Run,
			"position": strconv.Itoa(reading.Position),
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("pubsub publish for run %s failed: %w", reading.Run, err)
	}
	s.logger.Debug().Str("message_id", id).Str("run", reading.Run).Msg("Reading published")
	return true, nil
}
