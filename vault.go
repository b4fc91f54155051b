package affogato

import (
	"context"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/mongodb/grip"
)

// ProjectVault allows you to interact with all secrets stored under a single
// parent project.
type ProjectVault interface {
	// ListSecrets returns all secrets under the parent project in the order
	// the service lists them.
	ListSecrets(ctx context.Context) ([]*secretmanagerpb.Secret, error)
	// ListVersions returns all secret versions under the parent project,
	// across all of its secrets.
	ListVersions(ctx context.Context) ([]*secretmanagerpb.SecretVersion, error)
	// Client returns the underlying client for operations this vault does not
	// cover.
	Client() SecretManagerClient
	// Secret returns a vault bound to the given secret ID under the same
	// parent project.
	Secret(secretID string) SecretVault
}

// SecretVault allows you to interact with a single secret and its versions.
// Implementations are stateless - every operation is a single round trip to
// the secrets storage service and no results are cached locally.
type SecretVault interface {
	// Create creates the secret container with an automatic replication
	// policy. It fails if a secret with the same ID already exists under the
	// parent.
	Create(ctx context.Context) (*secretmanagerpb.Secret, error)
	// Get returns the secret's metadata. It fails if the secret does not
	// exist.
	Get(ctx context.Context) (*secretmanagerpb.Secret, error)
	// Delete deletes the secret and all of its versions.
	Delete(ctx context.Context) error
	// AddVersion adds a new version whose payload is the UTF-8 encoding of
	// the given content.
	AddVersion(ctx context.Context, content string) (*secretmanagerpb.SecretVersion, error)
	// Access returns the decoded payload of the requested version, or the
	// latest version if no version is given. Options are applied in the order
	// they're specified and conflicting options are overwritten. It returns
	// nil without an error if the version carries no payload.
	Access(ctx context.Context, opts ...*AccessVersionOptions) (*string, error)
	// AccessLatest is equivalent to Access with no options - it always
	// returns the latest version's payload.
	AccessLatest(ctx context.Context) (*string, error)
	// DestroyVersion irreversibly destroys the given version's payload. The
	// version's metadata remains listable.
	DestroyVersion(ctx context.Context, version int) (*secretmanagerpb.SecretVersion, error)
}

// AccessVersionOptions provide options to access one version of a secret. A
// zero value requests the latest version.
type AccessVersionOptions struct {
	// Version is the positive version number to access. If unset, it resolves
	// to the latest version.
	Version *int
}

// NewAccessVersionOptions returns new unconfigured options to access a secret
// version.
func NewAccessVersionOptions() *AccessVersionOptions {
	return &AccessVersionOptions{}
}

// SetVersion sets the version number to access.
func (o *AccessVersionOptions) SetVersion(version int) *AccessVersionOptions {
	o.Version = &version
	return o
}

// Validate checks that the version number is positive if it is set.
func (o *AccessVersionOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Version != nil && *o.Version <= 0, "version number must be positive")
	return catcher.Resolve()
}

// MergeAccessVersionOptions merges all the given options to access a secret
// version. Options are applied in the order they're specified and conflicting
// options are overwritten.
func MergeAccessVersionOptions(opts ...*AccessVersionOptions) *AccessVersionOptions {
	merged := AccessVersionOptions{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if opt.Version != nil {
			merged.Version = opt.Version
		}
	}

	return &merged
}
