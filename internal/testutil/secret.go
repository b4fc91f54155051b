package testutil

import (
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectName = "affogato"

// runtimeNamespace is a random string generated during testing runtime that
// acts as a namespace for this particular runtime's tests. It is used to
// namespace secrets created in GCP. This avoids an issue where the tests can
// be running concurrently on different machines and may interfere with each
// other due to the way leftover secrets are cleaned up at the end of tests.
var runtimeNamespace = utility.RandomString()

// NewSecretID creates a new test secret ID with a common prefix, the given
// test's name, and a random string. Secret IDs may not contain slashes, so
// the path segments are joined with dashes.
func NewSecretID(t *testing.T) string {
	return secretID(t) + "-" + utility.RandomString()
}

func secretID(t *testing.T) string {
	joined := path.Join(strings.TrimSuffix(SecretPrefix(), "/"), projectName, runtimeNamespace, t.Name())
	return strings.NewReplacer("/", "-", ":", "-", "#", "-").Replace(joined)
}

// SecretPrefix returns the prefix for secret IDs from the environment
// variable.
func SecretPrefix() string {
	return os.Getenv("GCP_SECRET_PREFIX")
}

// CleanupSecrets cleans up all leftover secrets created under the test
// project's namespace.
func CleanupSecrets(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
	out, err := c.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: Parent(),
	})
	if !assert.NoError(t, err) {
		return
	}

	for _, secret := range out {
		if secret == nil {
			continue
		}

		name := secret.GetName()

		// Ignore secrets that were not generated within these tests.
		if !strings.Contains(name, secretID(t)) {
			continue
		}

		err := c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
			Name: name,
		})
		if assert.NoError(t, err) {
			grip.Info(message.Fields{
				"message": "cleaned up leftover secret",
				"name":    name,
				"test":    t.Name(),
			})
		}
	}
}

// CreateSecret is a convenience function for creating a secret and verifying
// that the result is successful and populates the secret name.
func CreateSecret(ctx context.Context, t *testing.T, c affogato.SecretManagerClient, in *secretmanagerpb.CreateSecretRequest) *secretmanagerpb.Secret {
	out, err := c.CreateSecret(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, out)
	require.NotZero(t, out.GetName())
	return out
}
