package emulators

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	cloudTestRedisImage = "redis:8.0.2-alpine"
	cloudTestRedisPort  = "6379/tcp"
)

func GetDefaultRedisImageContainer() ImageContainer {
	return ImageContainer{
		EmulatorImage: cloudTestRedisImage,
		EmulatorPort:  cloudTestRedisPort,
	}
}

// SetupRedisContainer starts a Redis container. EmulatorAddress is set to
// "host:port", ready for redis.Options.Addr.
func SetupRedisContainer(t *testing.T, ctx context.Context, imageContainer ImageContainer) EmulatorConnectionInfo {
	t.Helper()
	port := tcpPort(imageContainer.EmulatorPort)
	req := testcontainers.ContainerRequest{
		Image:        imageContainer.EmulatorImage,
		ExposedPorts: []string{string(port)},
		WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second),
	}
	addr := startContainer(t, ctx, "Redis", req, port)

	return EmulatorConnectionInfo{
		EmulatorAddress: addr,
	}
}
