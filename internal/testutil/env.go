package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// CheckGCPEnvVars checks that the required environment variables are defined
// for testing against the real Secret Manager API.
func CheckGCPEnvVars(t *testing.T) {
	CheckEnvVars(t,
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GCP_PROJECT_ID",
		"GCP_SECRET_PREFIX",
	)
}

// CheckEnvVars checks that the required environment variables are set.
func CheckEnvVars(t *testing.T, envVars ...string) {
	var missing []string

	for _, envVar := range envVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		require.FailNow(t, fmt.Sprintf("missing required GCP environment variables: %s", missing))
	}
}
