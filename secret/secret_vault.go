package secret

import (
	"context"
	"hash/crc32"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
)

// crc32cTable is the Castagnoli polynomial table used for Secret Manager
// payload checksums.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// BasicSecretVault provides an affogato.SecretVault implementation backed by
// Secret Manager. It is bound to a single secret under a parent project and
// is immutable once constructed. Every operation is a single stateless round
// trip to the service.
type BasicSecretVault struct {
	client   affogato.SecretManagerClient
	parent   string
	secretID string
	labels   map[string]string
}

// BasicSecretVaultOptions are options to create a vault for interacting with
// a single secret.
type BasicSecretVaultOptions struct {
	// Client is the client used to communicate with Secret Manager.
	Client affogato.SecretManagerClient
	// Parent is the project under which the secret is scoped, either as a
	// full resource name (projects/my-project) or a bare project ID.
	Parent *string
	// SecretID is the secret's identifier under the parent.
	SecretID *string
	// Labels are optional labels attached to the secret on creation.
	Labels map[string]string
}

// NewBasicSecretVaultOptions returns new unconfigured options to create a
// secret vault.
func NewBasicSecretVaultOptions() *BasicSecretVaultOptions {
	return &BasicSecretVaultOptions{}
}

// SetClient sets the client the vault uses to communicate with Secret
// Manager.
func (o *BasicSecretVaultOptions) SetClient(c affogato.SecretManagerClient) *BasicSecretVaultOptions {
	o.Client = c
	return o
}

// SetParent sets the parent project the secret is scoped to.
func (o *BasicSecretVaultOptions) SetParent(parent string) *BasicSecretVaultOptions {
	o.Parent = &parent
	return o
}

// SetSecretID sets the secret's identifier.
func (o *BasicSecretVaultOptions) SetSecretID(secretID string) *BasicSecretVaultOptions {
	o.SecretID = &secretID
	return o
}

// SetLabels sets the labels attached to the secret on creation.
func (o *BasicSecretVaultOptions) SetLabels(labels map[string]string) *BasicSecretVaultOptions {
	o.Labels = labels
	return o
}

// Validate checks that all the required fields are given and normalizes the
// parent to a full resource name.
func (o *BasicSecretVaultOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Client == nil, "must provide a client")
	catcher.NewWhen(utility.FromStringPtr(o.Parent) == "", "must provide a parent project")
	catcher.NewWhen(utility.FromStringPtr(o.SecretID) == "", "must provide a secret ID")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	o.Parent = utility.ToStringPtr(affogato.NormalizeParent(utility.FromStringPtr(o.Parent)))

	return nil
}

// NewBasicSecretVault creates a vault for a single secret backed by Secret
// Manager.
func NewBasicSecretVault(opts BasicSecretVaultOptions) (*BasicSecretVault, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicSecretVault{
		client:   opts.Client,
		parent:   utility.FromStringPtr(opts.Parent),
		secretID: utility.FromStringPtr(opts.SecretID),
		labels:   opts.Labels,
	}, nil
}

// name returns the secret's full resource name.
func (v *BasicSecretVault) name() string {
	return affogato.SecretName(v.parent, v.secretID)
}

// Create creates the secret container with an automatic replication policy.
// It fails if a secret with the same ID already exists under the parent.
func (v *BasicSecretVault) Create(ctx context.Context) (*secretmanagerpb.Secret, error) {
	return v.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
		Parent:   v.parent,
		SecretId: v.secretID,
		Secret: &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
			Labels: v.labels,
		},
	})
}

// Get returns the secret's metadata. It fails if the secret does not exist.
func (v *BasicSecretVault) Get(ctx context.Context) (*secretmanagerpb.Secret, error) {
	return v.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: v.name(),
	})
}

// Delete deletes the secret and all of its versions.
func (v *BasicSecretVault) Delete(ctx context.Context) error {
	return v.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: v.name(),
	})
}

// AddVersion adds a new version whose payload is the UTF-8 encoding of the
// given content. The payload is sent along with a CRC32C checksum so the
// service can verify its integrity.
func (v *BasicSecretVault) AddVersion(ctx context.Context, content string) (*secretmanagerpb.SecretVersion, error) {
	data := []byte(content)
	return v.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: v.name(),
		Payload: &secretmanagerpb.SecretPayload{
			Data:       data,
			DataCrc32C: utility.ToInt64Ptr(int64(crc32.Checksum(data, crc32cTable))),
		},
	})
}

// Access returns the decoded payload of the requested version, or the latest
// version if no version is given. It returns nil without an error if the
// version carries no payload (e.g. a destroyed version).
func (v *BasicSecretVault) Access(ctx context.Context, opts ...*affogato.AccessVersionOptions) (*string, error) {
	merged := affogato.MergeAccessVersionOptions(opts...)
	if err := merged.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	version := affogato.LatestVersion
	if merged.Version != nil {
		version = affogato.FormatVersion(*merged.Version)
	}

	out, err := v.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: affogato.SecretVersionName(v.parent, v.secretID, version),
	})
	if err != nil {
		return nil, err
	}

	payload := out.GetPayload()
	if payload == nil {
		return nil, nil
	}

	if payload.DataCrc32C != nil {
		if int64(crc32.Checksum(payload.GetData(), crc32cTable)) != payload.GetDataCrc32C() {
			return nil, errors.New("payload checksum mismatch")
		}
	}

	return utility.ToStringPtr(string(payload.GetData())), nil
}

// AccessLatest is equivalent to Access with no options - it always returns
// the latest version's payload.
func (v *BasicSecretVault) AccessLatest(ctx context.Context) (*string, error) {
	return v.Access(ctx)
}

// DestroyVersion irreversibly destroys the given version's payload.
func (v *BasicSecretVault) DestroyVersion(ctx context.Context, version int) (*secretmanagerpb.SecretVersion, error) {
	if version <= 0 {
		return nil, errors.New("version number must be positive")
	}

	return v.client.DestroySecretVersion(ctx, &secretmanagerpb.DestroySecretVersionRequest{
		Name: affogato.SecretVersionName(v.parent, v.secretID, affogato.FormatVersion(version)),
	})
}
