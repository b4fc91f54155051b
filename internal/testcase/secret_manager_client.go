package testcase

import (
	"context"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SecretManagerClientTestCase represents a test case for an
// affogato.SecretManagerClient.
type SecretManagerClientTestCase func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient)

// SecretManagerClientTests returns common test cases that an
// affogato.SecretManagerClient should support.
func SecretManagerClientTests() map[string]SecretManagerClientTestCase {
	return map[string]SecretManagerClientTestCase{
		"CreateSecretSucceeds": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			out, err := c.CreateSecret(ctx, newCreateSecretRequest(testutil.NewSecretID(t)))
			require.NoError(t, err)
			require.NotZero(t, out)

			cleanupSecret(ctx, t, c, out.GetName())
		},
		"CreateSecretFailsWithInvalidInput": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			out, err := c.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"CreateSecretFailsWithExistingSecret": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			in := newCreateSecretRequest(testutil.NewSecretID(t))
			out := testutil.CreateSecret(ctx, t, c, in)
			defer cleanupSecret(ctx, t, c, out.GetName())

			dup, err := c.CreateSecret(ctx, in)
			assert.Error(t, err)
			assert.Equal(t, codes.AlreadyExists, status.Code(err))
			assert.Zero(t, dup)
		},
		"GetSecretSucceedsWithExistingSecret": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			secretID := testutil.NewSecretID(t)
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(secretID))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			out, err := c.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
				Name: createOut.GetName(),
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Equal(t, affogato.SecretName(testutil.Parent(), secretID), out.GetName())
		},
		"GetSecretFailsWithInvalidInput": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			out, err := c.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"GetSecretFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			out, err := c.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
				Name: affogato.SecretName(testutil.Parent(), testutil.NewSecretID(t)),
			})
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, out)
		},
		"DeleteSecretSucceeds": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))

			require.NoError(t, c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
				Name: createOut.GetName(),
			}))

			out, err := c.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
				Name: createOut.GetName(),
			})
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, out)
		},
		"DeleteSecretFailsWithInvalidInput": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			assert.Error(t, c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{}))
		},
		"DeleteSecretFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			err := c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
				Name: affogato.SecretName(testutil.Parent(), testutil.NewSecretID(t)),
			})
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
		},
		"ListSecretsReturnsCreatedSecrets": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			s0 := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, s0.GetName())
			s1 := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, s1.GetName())

			out, err := c.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
				Parent: testutil.Parent(),
			})
			require.NoError(t, err)

			var names []string
			for _, s := range out {
				names = append(names, s.GetName())
			}
			assert.Contains(t, names, s0.GetName())
			assert.Contains(t, names, s1.GetName())
		},
		"AddSecretVersionSucceeds": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			out, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
				Parent: createOut.GetName(),
				Payload: &secretmanagerpb.SecretPayload{
					Data: []byte(utility.RandomString()),
				},
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Equal(t, createOut.GetName()+"/versions/1", out.GetName())
		},
		"AddSecretVersionFailsWithNonexistentSecret": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			out, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
				Parent: affogato.SecretName(testutil.Parent(), testutil.NewSecretID(t)),
				Payload: &secretmanagerpb.SecretPayload{
					Data: []byte("hello"),
				},
			})
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, out)
		},
		"ListSecretVersionsReturnsAddedVersionsInOrder": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			for _, content := range []string{"v1", "v2"} {
				_, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
					Parent: createOut.GetName(),
					Payload: &secretmanagerpb.SecretPayload{
						Data: []byte(content),
					},
				})
				require.NoError(t, err)
			}

			out, err := c.ListSecretVersions(ctx, &secretmanagerpb.ListSecretVersionsRequest{
				Parent: createOut.GetName(),
			})
			require.NoError(t, err)
			require.Len(t, out, 2)
		},
		"AccessSecretVersionRoundTrips": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			addOut, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
				Parent: createOut.GetName(),
				Payload: &secretmanagerpb.SecretPayload{
					Data: []byte("hello"),
				},
			})
			require.NoError(t, err)

			out, err := c.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
				Name: addOut.GetName(),
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Equal(t, "hello", string(out.GetPayload().GetData()))
		},
		"AccessSecretVersionResolvesLatest": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			secretID := testutil.NewSecretID(t)
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(secretID))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			for _, content := range []string{"v1", "v2"} {
				_, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
					Parent: createOut.GetName(),
					Payload: &secretmanagerpb.SecretPayload{
						Data: []byte(content),
					},
				})
				require.NoError(t, err)
			}

			out, err := c.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
				Name: affogato.SecretVersionName(testutil.Parent(), secretID, affogato.LatestVersion),
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Equal(t, "v2", string(out.GetPayload().GetData()))
		},
		"AccessSecretVersionFailsWithNonexistentVersion": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			secretID := testutil.NewSecretID(t)
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(secretID))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			out, err := c.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
				Name: affogato.SecretVersionName(testutil.Parent(), secretID, affogato.FormatVersion(42)),
			})
			assert.Error(t, err)
			assert.Equal(t, codes.NotFound, status.Code(err))
			assert.Zero(t, out)
		},
		"DestroySecretVersionClearsPayload": func(ctx context.Context, t *testing.T, c affogato.SecretManagerClient) {
			createOut := testutil.CreateSecret(ctx, t, c, newCreateSecretRequest(testutil.NewSecretID(t)))
			defer cleanupSecret(ctx, t, c, createOut.GetName())

			addOut, err := c.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
				Parent: createOut.GetName(),
				Payload: &secretmanagerpb.SecretPayload{
					Data: []byte("hello"),
				},
			})
			require.NoError(t, err)

			destroyOut, err := c.DestroySecretVersion(ctx, &secretmanagerpb.DestroySecretVersionRequest{
				Name: addOut.GetName(),
			})
			require.NoError(t, err)
			assert.Equal(t, secretmanagerpb.SecretVersion_DESTROYED, destroyOut.GetState())
		},
	}
}

// newCreateSecretRequest returns a request to create a secret with the given
// ID and an automatic replication policy under the test project.
func newCreateSecretRequest(secretID string) *secretmanagerpb.CreateSecretRequest {
	return &secretmanagerpb.CreateSecretRequest{
		Parent:   testutil.Parent(),
		SecretId: secretID,
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
		},
	}
}

// cleanupSecret cleans up an existing secret.
func cleanupSecret(ctx context.Context, t *testing.T, c affogato.SecretManagerClient, name string) {
	if name != "" {
		require.NoError(t, c.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
			Name: name,
		}))
	}
}
