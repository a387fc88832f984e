// Package auth holds fail-fast credential checks for tests that talk to real
// Google Cloud projects instead of emulators.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/pubsub"
	"golang.org/x/oauth2/google"
)

// ProjectEnvVar names the project real-cloud tests run against.
const ProjectEnvVar = "GCP_PROJECT_ID"

// FormatGCPAuthError turns a client construction error into instructions a
// developer can act on.
func FormatGCPAuthError(err error) string {
	return fmt.Sprintf(`
	---------------------------------------------------------------------
	GCP AUTHENTICATION FAILED!
	---------------------------------------------------------------------
	Could not create a Google Cloud client. This is likely due to
	expired or missing Application Default Credentials (ADC).

	To fix this, please run:
	    gcloud auth application-default login

	Original Error: %v
	---------------------------------------------------------------------
	`, err)
}

// CheckGCPAuth skips the test when GCP_PROJECT_ID is unset and fails it when
// no Pub/Sub client can be built with the ambient credentials. It returns
// the project id.
func CheckGCPAuth(t *testing.T) string {
	t.Helper()
	projectID := os.Getenv(ProjectEnvVar)
	if projectID == "" {
		t.Skipf("Skipping real integration test: %s environment variable is not set", ProjectEnvVar)
	}
	ctx := context.Background()

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		t.Fatal(FormatGCPAuthError(err))
	}
	_ = client.Close()

	if principal := CredentialPrincipal(ctx); principal != "" {
		t.Logf("--- Using GCP credentials: %s", principal)
	}
	return projectID
}

// CredentialPrincipal describes who the Application Default Credentials
// belong to: the service account email when there is one, otherwise the
// credentials file. It returns "" when no credentials are found.
func CredentialPrincipal(ctx context.Context) string {
	creds, err := google.FindDefaultCredentials(ctx)
	if err != nil {
		return ""
	}
	return principalFromJSON(creds.JSON)
}

func principalFromJSON(raw []byte) string {
	var fields map[string]interface{}
	if len(raw) > 0 && json.Unmarshal(raw, &fields) == nil {
		if email, ok := fields["client_email"].(string); ok && email != "" {
			return email
		}
	}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		return "user credentials from " + path
	}
	return "user credentials"
}
