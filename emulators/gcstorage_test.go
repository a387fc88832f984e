//go:build integration

package emulators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupGCSEmulator(t *testing.T) {
	testCtx, testCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(testCancel)

	projectID := "test-project-gcs"
	baseBucket := "test-bucket"
	cfg := GetDefaultGCSConfig(projectID, baseBucket)

	connInfo := SetupGCSEmulator(t, context.Background(), cfg)
	require.NotEmpty(t, connInfo.HTTPEndpoint.Endpoint, "HTTPEndpoint.Endpoint is empty")
	require.NotEmpty(t, connInfo.ClientOptions, "ClientOptions are empty")

	gcsClient := NewStorageClient(t, testCtx, connInfo.ClientOptions)

	// Bucket creation is the test's job, not the setup's.
	err := gcsClient.Bucket(baseBucket).Create(testCtx, projectID, nil)
	require.NoError(t, err, "Failed to create base bucket %q", baseBucket)

	_, err = gcsClient.Bucket(baseBucket).Attrs(testCtx)
	require.NoError(t, err, "Failed to get attributes for base bucket %q", baseBucket)
}
