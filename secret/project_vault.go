package secret

import (
	"context"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/frothhq/affogato/gcputil"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

// BasicProjectVault provides an affogato.ProjectVault implementation backed
// by Secret Manager. It is bound to a single parent project and is immutable
// once constructed.
type BasicProjectVault struct {
	client affogato.SecretManagerClient
	parent string
}

// BasicProjectVaultOptions are options to create a project vault for
// interacting with secrets under a single project.
type BasicProjectVaultOptions struct {
	// Client is the client used to communicate with Secret Manager.
	Client affogato.SecretManagerClient
	// Parent is the project under which secrets are scoped, either as a full
	// resource name (projects/my-project) or a bare project ID.
	Parent *string
}

// NewBasicProjectVaultOptions returns new unconfigured options to create a
// project vault.
func NewBasicProjectVaultOptions() *BasicProjectVaultOptions {
	return &BasicProjectVaultOptions{}
}

// SetClient sets the client the vault uses to communicate with Secret
// Manager.
func (o *BasicProjectVaultOptions) SetClient(c affogato.SecretManagerClient) *BasicProjectVaultOptions {
	o.Client = c
	return o
}

// SetParent sets the parent project the vault is scoped to.
func (o *BasicProjectVaultOptions) SetParent(parent string) *BasicProjectVaultOptions {
	o.Parent = &parent
	return o
}

// Validate checks that all the required fields are given and normalizes the
// parent to a full resource name.
func (o *BasicProjectVaultOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Client == nil, "must provide a client")
	catcher.NewWhen(utility.FromStringPtr(o.Parent) == "", "must provide a parent project")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	o.Parent = utility.ToStringPtr(affogato.NormalizeParent(utility.FromStringPtr(o.Parent)))

	return nil
}

// NewBasicProjectVault creates a project vault backed by Secret Manager from
// an existing client.
func NewBasicProjectVault(opts BasicProjectVaultOptions) (*BasicProjectVault, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicProjectVault{
		client: opts.Client,
		parent: utility.FromStringPtr(opts.Parent),
	}, nil
}

// NewBasicProjectVaultFromClientOptions creates a project vault along with
// its own new Secret Manager client. Each call constructs a separate client,
// so callers that create many vaults should construct one client and use
// NewBasicProjectVault instead.
func NewBasicProjectVaultFromClientOptions(parent string, opts gcputil.ClientOptions) (*BasicProjectVault, error) {
	c, err := NewBasicSecretManagerClient(opts)
	if err != nil {
		return nil, errors.Wrap(err, "creating client")
	}

	return NewBasicProjectVault(*NewBasicProjectVaultOptions().SetClient(c).SetParent(parent))
}

// ListSecrets returns all secrets under the parent project in the order the
// service lists them.
func (v *BasicProjectVault) ListSecrets(ctx context.Context) ([]*secretmanagerpb.Secret, error) {
	return v.client.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: v.parent,
	})
}

// ListVersions returns all secret versions under the parent project across
// all of its secrets. Secret Manager lists versions per secret, so the
// results are aggregated in secret listing order.
func (v *BasicProjectVault) ListVersions(ctx context.Context) ([]*secretmanagerpb.SecretVersion, error) {
	secrets, err := v.ListSecrets(ctx)
	if err != nil {
		return nil, err
	}

	var versions []*secretmanagerpb.SecretVersion
	for _, s := range secrets {
		if s == nil {
			continue
		}

		svs, err := v.client.ListSecretVersions(ctx, &secretmanagerpb.ListSecretVersionsRequest{
			Parent: s.GetName(),
		})
		if err != nil {
			return nil, err
		}

		versions = append(versions, svs...)
	}

	return versions, nil
}

// Client returns the underlying client for operations this vault does not
// cover.
func (v *BasicProjectVault) Client() affogato.SecretManagerClient {
	return v.client
}

// Secret returns a vault bound to the given secret ID under the same parent
// project.
func (v *BasicProjectVault) Secret(secretID string) affogato.SecretVault {
	return &BasicSecretVault{
		client:   v.client,
		parent:   v.parent,
		secretID: secretID,
	}
}
