package emulators

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/option"
)

const (
	testGCSImage = "fsouza/fake-gcs-server:latest"
	testGCSPort  = "4443"
)

// GCSConfig holds configuration specific to the GCS emulator.
type GCSConfig struct {
	GCImageContainer
	// BaseBucket is a bucket the test may want to create. It is not created
	// by SetupGCSEmulator.
	BaseBucket string
	// BaseStorage is the path polled to decide the emulator is up.
	BaseStorage string
}

// GetDefaultGCSConfig provides a default configuration for the GCS emulator.
func GetDefaultGCSConfig(projectID, baseBucket string) GCSConfig {
	return GCSConfig{
		GCImageContainer: GCImageContainer{
			ImageContainer: ImageContainer{
				EmulatorImage: testGCSImage,
				EmulatorPort:  testGCSPort,
			},
			ProjectID: projectID,
		},
		BaseBucket:  baseBucket,
		BaseStorage: "/storage/v1/b",
	}
}

// NewStorageClient creates a storage client and closes it on cleanup.
func NewStorageClient(t *testing.T, ctx context.Context, opts []option.ClientOption) *storage.Client {
	t.Helper()
	gcsClient, err := storage.NewClient(ctx, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, gcsClient.Close())
	})
	return gcsClient
}

// SetupGCSEmulator starts fake-gcs-server over plain http and points
// STORAGE_EMULATOR_HOST at it for the rest of the test.
func SetupGCSEmulator(t *testing.T, ctx context.Context, cfg GCSConfig) EmulatorConnectionInfo {
	t.Helper()

	port := tcpPort(cfg.EmulatorPort)
	req := testcontainers.ContainerRequest{
		Image:        cfg.EmulatorImage,
		ExposedPorts: []string{string(port)},
		Cmd:          []string{"-scheme", "http"},
		WaitingFor: wait.ForHTTP(cfg.BaseStorage).WithPort(port).WithStatusCodeMatcher(
			func(status int) bool {
				// An empty listing answers 400, which still means the server is up.
				return status > 0
			}).WithStartupTimeout(20 * time.Second),
	}
	addr := startContainer(t, ctx, "GCS", req, port)

	// The storage client only speaks plain http to an emulator found via this variable.
	t.Setenv("STORAGE_EMULATOR_HOST", addr)

	return EmulatorConnectionInfo{
		HTTPEndpoint: Endpoint{
			Port:     cfg.EmulatorPort,
			Endpoint: addr,
		},
		ClientOptions: []option.ClientOption{option.WithoutAuthentication()},
	}
}
