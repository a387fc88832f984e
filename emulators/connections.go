package emulators

import (
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Endpoint holds the port and full endpoint string for a service.
type Endpoint struct {
	// Port is the *internal* port of the service (e.g., "8085").
	Port string
	// Endpoint is the *external*, mapped endpoint (e.g., "localhost:32768").
	Endpoint string
}

// EmulatorConnectionInfo holds all connection details for a test emulator.
// Different fields are populated depending on the service.
type EmulatorConnectionInfo struct {
	// HTTPEndpoint is used by the Google Cloud emulators (GCS, Pub/Sub).
	HTTPEndpoint Endpoint
	// EmulatorAddress is a generic address string for non-Google services
	// like MQTT ("tcp://localhost:1883") or Redis ("localhost:6379").
	EmulatorAddress string
	// ClientOptions are pre-configured Google Cloud client options
	// for connecting to the emulator.
	ClientOptions []option.ClientOption
}

// getEmulatorOptions returns the gRPC client options needed to reach a
// Google Cloud emulator: its endpoint, no auth and no TLS.
func getEmulatorOptions(endpoint string) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(endpoint),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}
