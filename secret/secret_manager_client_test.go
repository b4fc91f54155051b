package secret

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/gcputil"
	"github.com/frothhq/affogato/internal/testcase"
	"github.com/frothhq/affogato/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultTestTimeout = 30 * time.Second

// checkIntegrationEnv skips tests that make actual requests to Secret Manager
// unless integration testing is enabled, then verifies the required
// environment variables.
func checkIntegrationEnv(t *testing.T) {
	if os.Getenv("RUN_GCP_INTEGRATION_TESTS") == "" {
		t.Skip("skipping tests against the real Secret Manager API")
	}
	testutil.CheckGCPEnvVars(t)
}

func TestBasicSecretManagerClient(t *testing.T) {
	assert.Implements(t, (*affogato.SecretManagerClient)(nil), &BasicSecretManagerClient{})

	t.Run("NewBasicSecretManagerClient", func(t *testing.T) {
		t.Run("SucceedsWithValidOptions", func(t *testing.T) {
			c, err := NewBasicSecretManagerClient(testutil.ValidNonIntegrationGCPOptions())
			require.NoError(t, err)
			require.NotZero(t, c)
		})
		t.Run("FailsWithInvalidOptions", func(t *testing.T) {
			c, err := NewBasicSecretManagerClient(*gcputil.NewClientOptions().
				SetCredentialsFile("/path/to/key.json").
				SetCredentialsJSON([]byte("{}")))
			assert.Error(t, err)
			assert.Zero(t, c)
		})
	})

	t.Run("CloseIsIdempotentWithoutSetup", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
		defer cancel()

		c, err := NewBasicSecretManagerClient(testutil.ValidNonIntegrationGCPOptions())
		require.NoError(t, err)
		assert.NoError(t, c.Close(ctx))
		assert.NoError(t, c.Close(ctx))
	})
}

func TestSecretManagerClientIntegration(t *testing.T) {
	checkIntegrationEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := NewBasicSecretManagerClient(testutil.ValidIntegrationGCPOptions())
	require.NoError(t, err)
	defer func() {
		testutil.CleanupSecrets(ctx, t, c)

		assert.NoError(t, c.Close(ctx))
	}()

	for tName, tCase := range testcase.SecretManagerClientTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, defaultTestTimeout)
			defer tcancel()

			tCase(tctx, t, c)
		})
	}
}
