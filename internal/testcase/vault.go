package testcase

import (
	"context"
	"testing"

	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// VaultTestCase represents a test case for an affogato.ProjectVault and the
// secret vaults it constructs.
type VaultTestCase func(ctx context.Context, t *testing.T, v affogato.ProjectVault)

// ProjectVaultTests returns common test cases that an affogato.ProjectVault
// should support.
func ProjectVaultTests() map[string]VaultTestCase {
	return map[string]VaultTestCase{
		"ListSecretsReturnsCreatedSecrets": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv0 := v.Secret(testutil.NewSecretID(t))
			s0, err := sv0.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv0)

			sv1 := v.Secret(testutil.NewSecretID(t))
			s1, err := sv1.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv1)

			secrets, err := v.ListSecrets(ctx)
			require.NoError(t, err)

			var names []string
			for _, s := range secrets {
				names = append(names, s.GetName())
			}
			assert.Contains(t, names, s0.GetName())
			assert.Contains(t, names, s1.GetName())
		},
		"ListVersionsReturnsVersionsAcrossSecrets": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			var expected []string
			for i := 0; i < 2; i++ {
				sv := v.Secret(testutil.NewSecretID(t))
				_, err := sv.Create(ctx)
				require.NoError(t, err)
				defer cleanupSecretVault(ctx, t, sv)

				version, err := sv.AddVersion(ctx, utility.RandomString())
				require.NoError(t, err)
				expected = append(expected, version.GetName())
			}

			versions, err := v.ListVersions(ctx)
			require.NoError(t, err)

			var names []string
			for _, version := range versions {
				names = append(names, version.GetName())
			}
			for _, name := range expected {
				assert.Contains(t, names, name)
			}
		},
		"ClientReturnsUnderlyingClient": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			assert.NotZero(t, v.Client())
		},
		"SecretReturnsVaultBoundToSecretID": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			secretID := testutil.NewSecretID(t)
			sv := v.Secret(secretID)
			require.NotZero(t, sv)

			s, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			assert.Equal(t, affogato.SecretName(testutil.Parent(), secretID), s.GetName())
		},
	}
}

// SecretVaultTests returns common test cases that an affogato.SecretVault
// should support.
func SecretVaultTests() map[string]VaultTestCase {
	return map[string]VaultTestCase{
		"CreateAndGetSucceed": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			secretID := testutil.NewSecretID(t)
			sv := v.Secret(secretID)

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			s, err := sv.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, affogato.SecretName(testutil.Parent(), secretID), s.GetName())
		},
		"CreateFailsWithExistingSecret": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			s, err := sv.Create(ctx)
			assert.Error(t, err)
			assert.Equal(t, codes.AlreadyExists, status.Code(err))
			assert.Zero(t, s)
		},
		"GetFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			s, err := v.Secret(testutil.NewSecretID(t)).Get(ctx)
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, s)
		},
		"DeleteSucceedsAndGetFailsAfterward": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)

			require.NoError(t, sv.Delete(ctx))

			s, err := sv.Get(ctx)
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, s)
		},
		"DeleteFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			err := v.Secret(testutil.NewSecretID(t)).Delete(ctx)
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
		},
		"AddVersionAndAccessRoundTrip": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			_, err = sv.AddVersion(ctx, "hello")
			require.NoError(t, err)

			val, err := sv.Access(ctx)
			require.NoError(t, err)
			assert.Equal(t, "hello", utility.FromStringPtr(val))
		},
		"AccessDefaultsToLatestVersion": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			for _, content := range []string{"v1", "v2"} {
				_, err = sv.AddVersion(ctx, content)
				require.NoError(t, err)
			}

			val, err := sv.Access(ctx, affogato.NewAccessVersionOptions().SetVersion(1))
			require.NoError(t, err)
			assert.Equal(t, "v1", utility.FromStringPtr(val))

			val, err = sv.Access(ctx, affogato.NewAccessVersionOptions().SetVersion(2))
			require.NoError(t, err)
			assert.Equal(t, "v2", utility.FromStringPtr(val))

			val, err = sv.Access(ctx)
			require.NoError(t, err)
			assert.Equal(t, "v2", utility.FromStringPtr(val))

			val, err = sv.AccessLatest(ctx)
			require.NoError(t, err)
			assert.Equal(t, "v2", utility.FromStringPtr(val))
		},
		"AccessFailsWithNonexistentVersion": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			val, err := sv.Access(ctx, affogato.NewAccessVersionOptions().SetVersion(42))
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, val)
		},
		"AccessFailsWithNonpositiveVersion": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			val, err := v.Secret(testutil.NewSecretID(t)).Access(ctx, affogato.NewAccessVersionOptions().SetVersion(0))
			assert.Error(t, err)
			assert.Zero(t, val)
		},
		"AccessReturnsNoPayloadForDestroyedVersion": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			sv := v.Secret(testutil.NewSecretID(t))

			_, err := sv.Create(ctx)
			require.NoError(t, err)
			defer cleanupSecretVault(ctx, t, sv)

			_, err = sv.AddVersion(ctx, "hello")
			require.NoError(t, err)

			_, err = sv.DestroyVersion(ctx, 1)
			require.NoError(t, err)

			val, err := sv.Access(ctx, affogato.NewAccessVersionOptions().SetVersion(1))
			require.NoError(t, err)
			assert.Nil(t, val)
		},
		"DestroyVersionFailsWithNonpositiveVersion": func(ctx context.Context, t *testing.T, v affogato.ProjectVault) {
			out, err := v.Secret(testutil.NewSecretID(t)).DestroyVersion(ctx, 0)
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

// cleanupSecretVault cleans up an existing secret through its vault.
func cleanupSecretVault(ctx context.Context, t *testing.T, sv affogato.SecretVault) {
	require.NoError(t, sv.Delete(ctx))
}
