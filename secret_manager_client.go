package affogato

import (
	"context"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretManagerClient provides a common interface to interact with a Secret
// Manager client and its mock implementation for testing. Implementations must
// handle retrying and backoff for transient failures; all other service errors
// are returned to the caller exactly as the service reports them.
type SecretManagerClient interface {
	// CreateSecret creates a new secret container under a parent project.
	CreateSecret(ctx context.Context, in *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error)
	// GetSecret gets an existing secret's metadata.
	GetSecret(ctx context.Context, in *secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error)
	// DeleteSecret deletes an existing secret and all of its versions.
	DeleteSecret(ctx context.Context, in *secretmanagerpb.DeleteSecretRequest) error
	// ListSecrets lists all secrets under a parent project in the order the
	// service returns them.
	ListSecrets(ctx context.Context, in *secretmanagerpb.ListSecretsRequest) ([]*secretmanagerpb.Secret, error)
	// ListSecretVersions lists all versions of a secret in the order the
	// service returns them.
	ListSecretVersions(ctx context.Context, in *secretmanagerpb.ListSecretVersionsRequest) ([]*secretmanagerpb.SecretVersion, error)
	// AddSecretVersion adds a new version containing a payload to an existing
	// secret.
	AddSecretVersion(ctx context.Context, in *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error)
	// AccessSecretVersion returns the payload of an existing secret version.
	AccessSecretVersion(ctx context.Context, in *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	// DestroySecretVersion irreversibly destroys an existing secret version's
	// payload.
	DestroySecretVersion(ctx context.Context, in *secretmanagerpb.DestroySecretVersionRequest) (*secretmanagerpb.SecretVersion, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
