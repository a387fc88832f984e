// Package emulators starts throwaway backing services in containers for
// integration tests. Every Setup function registers its own t.Cleanup.
package emulators

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// ImageContainer holds basic, non-cloud-specific container configuration.
type ImageContainer struct {
	// EmulatorImage is the full Docker image name and tag (e.g., "redis:8.0.2-alpine").
	EmulatorImage string
	// EmulatorPort is the *internal* port the container exposes (e.g., "6379/tcp").
	EmulatorPort string
}

// GCImageContainer extends ImageContainer with configuration specific
// to Google Cloud emulators.
type GCImageContainer struct {
	ImageContainer
	// ProjectID is the Google Cloud Project ID to configure the emulator with.
	ProjectID string
}

// tcpPort normalises "6379" and "6379/tcp" to the latter.
func tcpPort(port string) nat.Port {
	if strings.Contains(port, "/") {
		return nat.Port(port)
	}
	return nat.Port(port + "/tcp")
}

// startContainer starts req, terminates it on cleanup and returns the
// "host:port" the given internal port is reachable on.
func startContainer(t *testing.T, ctx context.Context, name string, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err, "Failed to start %s container", name)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate %s container: %v", name, err)
			return
		}
		t.Logf("%s container terminated.", name)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	addr := fmt.Sprintf("%s:%s", host, mapped.Port())
	t.Logf("%s container started at: %s", name, addr)
	return addr
}
