package emulators

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// testEmulatorImage is the Google Cloud SDK image bundling the emulators.
	testEmulatorImage      = "gcr.io/google.com/cloudsdktool/cloud-sdk:emulators"
	testPubsubEmulatorPort = "8085"
)

// PubsubConfig holds configuration specific to the Pub/Sub emulator.
type PubsubConfig struct {
	GCImageContainer
}

// GetDefaultPubsubConfig provides a default configuration for the Pub/Sub emulator.
func GetDefaultPubsubConfig(projectID string) PubsubConfig {
	return PubsubConfig{
		GCImageContainer: GCImageContainer{
			ImageContainer: ImageContainer{
				EmulatorImage: testEmulatorImage,
				EmulatorPort:  testPubsubEmulatorPort,
			},
			ProjectID: projectID,
		},
	}
}

// SetupPubsubEmulator starts the Pub/Sub emulator. Topics and subscriptions
// are left to the test, see CreatePubsubTopic.
func SetupPubsubEmulator(t *testing.T, ctx context.Context, cfg PubsubConfig) EmulatorConnectionInfo {
	t.Helper()

	port := tcpPort(cfg.EmulatorPort)
	req := testcontainers.ContainerRequest{
		Image:        cfg.EmulatorImage,
		ExposedPorts: []string{string(port)},
		Cmd: []string{"gcloud", "beta", "emulators", "pubsub", "start",
			fmt.Sprintf("--project=%s", cfg.ProjectID),
			fmt.Sprintf("--host-port=0.0.0.0:%s", cfg.EmulatorPort)},
		WaitingFor: wait.ForListeningPort(port).WithStartupTimeout(90 * time.Second),
	}
	addr := startContainer(t, ctx, "Pub/Sub", req, port)

	return EmulatorConnectionInfo{
		HTTPEndpoint: Endpoint{
			Port:     cfg.EmulatorPort,
			Endpoint: addr,
		},
		ClientOptions: getEmulatorOptions(addr),
	}
}

// CreatePubsubTopic creates a topic with a single subscription attached and
// deletes both on cleanup.
func CreatePubsubTopic(t *testing.T, ctx context.Context, client *pubsub.Client, topicID, subID string) (*pubsub.Topic, *pubsub.Subscription) {
	t.Helper()

	topic, err := client.CreateTopic(ctx, topicID)
	require.NoError(t, err)
	t.Cleanup(func() {
		topic.Stop()
		_ = topic.Delete(context.Background())
	})

	sub, err := client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sub.Delete(context.Background())
	})
	return topic, sub
}
