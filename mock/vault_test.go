package mock

import (
	"context"
	"testing"

	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/internal/testcase"
	"github.com/frothhq/affogato/internal/testutil"
	"github.com/frothhq/affogato/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultWithSecretManager(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	makeProjectVault := func(t *testing.T, c *SecretManagerClient) affogato.ProjectVault {
		v, err := secret.NewBasicProjectVault(*secret.NewBasicProjectVaultOptions().
			SetClient(c).
			SetParent(testutil.Parent()))
		require.NoError(t, err)
		require.NotZero(t, v)
		return v
	}

	for _, suite := range []map[string]testcase.VaultTestCase{
		testcase.ProjectVaultTests(),
		testcase.SecretVaultTests(),
	} {
		for tName, tCase := range suite {
			t.Run(tName, func(t *testing.T) {
				tctx, tcancel := context.WithTimeout(ctx, defaultTestTimeout)
				defer tcancel()

				ResetGlobalSecretCache()

				c := &SecretManagerClient{}
				defer func() {
					assert.NoError(t, c.Close(tctx))
				}()

				tCase(tctx, t, makeProjectVault(t, c))
			})
		}
	}

	for tName, tCase := range map[string]func(ctx context.Context, t *testing.T, v affogato.ProjectVault, c *SecretManagerClient){
		"CreateRequestsAutomaticReplication": func(ctx context.Context, t *testing.T, v affogato.ProjectVault, c *SecretManagerClient) {
			sv := v.Secret(testutil.NewSecretID(t))
			_, err := sv.Create(ctx)
			require.NoError(t, err)

			require.NotZero(t, c.CreateSecretInput, "should have created a secret")
			assert.NotZero(t, c.CreateSecretInput.GetSecret().GetReplication().GetAutomatic(), "secret should use the automatic replication policy")
		},
		"AddVersionSendsPayloadChecksum": func(ctx context.Context, t *testing.T, v affogato.ProjectVault, c *SecretManagerClient) {
			sv := v.Secret(testutil.NewSecretID(t))
			_, err := sv.Create(ctx)
			require.NoError(t, err)

			_, err = sv.AddVersion(ctx, "hello")
			require.NoError(t, err)

			require.NotZero(t, c.AddSecretVersionInput, "should have added a version")
			payload := c.AddSecretVersionInput.GetPayload()
			require.NotZero(t, payload)
			assert.Equal(t, "hello", string(payload.GetData()))
			assert.NotNil(t, payload.DataCrc32C, "payload should carry a checksum")
		},
		"AccessResolvesOmittedVersionToLatest": func(ctx context.Context, t *testing.T, v affogato.ProjectVault, c *SecretManagerClient) {
			secretID := testutil.NewSecretID(t)
			sv := v.Secret(secretID)
			_, err := sv.Create(ctx)
			require.NoError(t, err)

			_, err = sv.AddVersion(ctx, "hello")
			require.NoError(t, err)

			val, err := sv.Access(ctx)
			require.NoError(t, err)
			assert.Equal(t, "hello", utility.FromStringPtr(val))

			require.NotZero(t, c.AccessSecretVersionInput, "should have accessed a version")
			assert.Equal(t, affogato.SecretVersionName(testutil.Parent(), secretID, affogato.LatestVersion), c.AccessSecretVersionInput.GetName())
		},
		"AccessLatestMatchesAccessWithoutOptions": func(ctx context.Context, t *testing.T, v affogato.ProjectVault, c *SecretManagerClient) {
			secretID := testutil.NewSecretID(t)
			sv := v.Secret(secretID)
			_, err := sv.Create(ctx)
			require.NoError(t, err)

			_, err = sv.AddVersion(ctx, "hello")
			require.NoError(t, err)

			val, err := sv.AccessLatest(ctx)
			require.NoError(t, err)
			assert.Equal(t, "hello", utility.FromStringPtr(val))

			require.NotZero(t, c.AccessSecretVersionInput)
			assert.Equal(t, affogato.SecretVersionName(testutil.Parent(), secretID, affogato.LatestVersion), c.AccessSecretVersionInput.GetName())
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, defaultTestTimeout)
			defer tcancel()

			ResetGlobalSecretCache()

			c := &SecretManagerClient{}
			defer func() {
				assert.NoError(t, c.Close(tctx))
			}()

			tCase(tctx, t, makeProjectVault(t, c), c)
		})
	}
}
