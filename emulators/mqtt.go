package emulators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mosquitoImage = "eclipse-mosquitto:2.0"
	mosquitoPort  = "1883"
)

// GetDefaultMqttImageContainer returns a default configuration for the Mosquitto container.
func GetDefaultMqttImageContainer() ImageContainer {
	return ImageContainer{
		EmulatorImage: mosquitoImage,
		EmulatorPort:  mosquitoPort,
	}
}

// SetupMosquittoContainer starts a Mosquitto broker that accepts anonymous
// clients. EmulatorAddress holds the broker URL ("tcp://host:port").
func SetupMosquittoContainer(t *testing.T, ctx context.Context, cfg ImageContainer) EmulatorConnectionInfo {
	t.Helper()

	// Mosquitto 2 refuses anonymous clients without an explicit listener config.
	confPath := filepath.Join(t.TempDir(), "mosquitto.conf")
	conf := fmt.Sprintf("listener %s\nallow_anonymous true\n", cfg.EmulatorPort)
	require.NoError(t, os.WriteFile(confPath, []byte(conf), 0644))

	port := tcpPort(cfg.EmulatorPort)
	req := testcontainers.ContainerRequest{
		Image:        cfg.EmulatorImage,
		ExposedPorts: []string{string(port)},
		WaitingFor:   wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second),
		Files:        []testcontainers.ContainerFile{{HostFilePath: confPath, ContainerFilePath: "/mosquitto/config/mosquitto.conf"}},
	}
	addr := startContainer(t, ctx, "Mosquitto", req, port)

	return EmulatorConnectionInfo{
		EmulatorAddress: "tcp://" + addr,
	}
}

// CreateTestMqttClient connects a plain paho client to brokerURL, waiting
// up to 10 seconds.
func CreateTestMqttClient(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL).SetClientID(clientID).SetAutoReconnect(false)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("test mqtt client %s timed out connecting to %s", clientID, brokerURL)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("test mqtt client connect error: %w", token.Error())
	}
	return client, nil
}
