package secret

import (
	"context"
	"testing"

	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/internal/testcase"
	"github.com/frothhq/affogato/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicSecretVault(t *testing.T) {
	assert.Implements(t, (*affogato.SecretVault)(nil), &BasicSecretVault{})

	c, err := NewBasicSecretManagerClient(testutil.ValidNonIntegrationGCPOptions())
	require.NoError(t, err)

	t.Run("NewBasicSecretVault", func(t *testing.T) {
		t.Run("FailsWithZeroOptions", func(t *testing.T) {
			v, err := NewBasicSecretVault(*NewBasicSecretVaultOptions())
			assert.Error(t, err)
			assert.Zero(t, v)
		})
		t.Run("FailsWithoutClient", func(t *testing.T) {
			v, err := NewBasicSecretVault(*NewBasicSecretVaultOptions().
				SetParent(testutil.Parent()).
				SetSecretID("some-secret"))
			assert.Error(t, err)
			assert.Zero(t, v)
		})
		t.Run("FailsWithoutSecretID", func(t *testing.T) {
			v, err := NewBasicSecretVault(*NewBasicSecretVaultOptions().
				SetClient(c).
				SetParent(testutil.Parent()))
			assert.Error(t, err)
			assert.Zero(t, v)
		})
		t.Run("SucceedsWithValidOptions", func(t *testing.T) {
			v, err := NewBasicSecretVault(*NewBasicSecretVaultOptions().
				SetClient(c).
				SetParent(testutil.Parent()).
				SetSecretID("some-secret"))
			require.NoError(t, err)
			require.NotZero(t, v)
			assert.Equal(t, affogato.SecretName(testutil.Parent(), "some-secret"), v.name())
		})
		t.Run("NormalizesBareProjectID", func(t *testing.T) {
			v, err := NewBasicSecretVault(*NewBasicSecretVaultOptions().
				SetClient(c).
				SetParent(testutil.ProjectID()).
				SetSecretID("some-secret"))
			require.NoError(t, err)
			require.NotZero(t, v)
			assert.Equal(t, affogato.SecretName(testutil.Parent(), "some-secret"), v.name())
		})
		t.Run("SetLabels", func(t *testing.T) {
			labels := map[string]string{"team": "storage"}
			opts := NewBasicSecretVaultOptions().SetLabels(labels)
			assert.Equal(t, labels, opts.Labels)
		})
	})
}

func TestSecretVaultIntegration(t *testing.T) {
	checkIntegrationEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := NewBasicSecretManagerClient(testutil.ValidIntegrationGCPOptions())
	require.NoError(t, err)
	defer func() {
		testutil.CleanupSecrets(ctx, t, c)

		assert.NoError(t, c.Close(ctx))
	}()

	for tName, tCase := range testcase.SecretVaultTests() {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, defaultTestTimeout)
			defer tcancel()

			v, err := NewBasicProjectVault(*NewBasicProjectVaultOptions().
				SetClient(c).
				SetParent(testutil.Parent()))
			require.NoError(t, err)
			require.NotNil(t, v)

			tCase(tctx, t, v)
		})
	}
}
