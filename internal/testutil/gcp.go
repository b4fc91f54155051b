package testutil

import (
	"os"

	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato/gcputil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ProjectID returns the GCP project ID from the environment variable, or a
// fixed fake ID when it is unset (e.g. for tests against the mock client).
func ProjectID() string {
	if id := os.Getenv("GCP_PROJECT_ID"); id != "" {
		return id
	}
	return "affogato-test"
}

// Parent returns the full parent resource name of the test project.
func Parent() string {
	return "projects/" + ProjectID()
}

// ValidIntegrationGCPOptions returns valid options to create a GCP client
// that can make actual requests to Secret Manager for integration testing.
// Credentials are discovered from the standard environment variables.
func ValidIntegrationGCPOptions() gcputil.ClientOptions {
	return *gcputil.NewClientOptions().
		SetRetryOptions(utility.RetryOptions{
			MaxAttempts: 5,
		})
}

// ValidNonIntegrationGCPOptions returns valid options to create a GCP client
// that doesn't make any actual requests to GCP.
func ValidNonIntegrationGCPOptions() gcputil.ClientOptions {
	return *gcputil.NewClientOptions().
		SetEndpoint("localhost:1").
		SetWithoutAuthentication(true).
		SetDialOpts(grpc.WithTransportCredentials(insecure.NewCredentials()))
}
