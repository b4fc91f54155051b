package mock

import (
	"context"
	"fmt"
	"hash/crc32"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// StoredSecret is a representation of a secret kept in the global secret
// storage cache.
type StoredSecret struct {
	// Name is the secret's full resource name.
	Name    string
	Created time.Time
	Labels  map[string]string
	// Versions are the secret's versions in creation order. Version numbers
	// are one-based indices into this slice.
	Versions []StoredSecretVersion
}

// StoredSecretVersion is a representation of a single version of a secret
// kept in the global secret storage cache.
type StoredSecretVersion struct {
	// Name is the version's full resource name.
	Name        string
	Payload     []byte
	Created     time.Time
	IsDestroyed bool
}

func newStoredSecret(in *secretmanagerpb.CreateSecretRequest, ts time.Time) StoredSecret {
	return StoredSecret{
		Name:    affogato.SecretName(in.GetParent(), in.GetSecretId()),
		Created: ts,
		Labels:  in.GetSecret().GetLabels(),
	}
}

func exportSecret(s StoredSecret) *secretmanagerpb.Secret {
	return &secretmanagerpb.Secret{
		Name: s.Name,
		Replication: &secretmanagerpb.Replication{
			Replication: &secretmanagerpb.Replication_Automatic_{
				Automatic: &secretmanagerpb.Replication_Automatic{},
			},
		},
		Labels:     s.Labels,
		CreateTime: timestamppb.New(s.Created),
	}
}

func exportSecretVersion(v StoredSecretVersion) *secretmanagerpb.SecretVersion {
	state := secretmanagerpb.SecretVersion_ENABLED
	if v.IsDestroyed {
		state = secretmanagerpb.SecretVersion_DESTROYED
	}
	return &secretmanagerpb.SecretVersion{
		Name:       v.Name,
		State:      state,
		CreateTime: timestamppb.New(v.Created),
	}
}

// GlobalSecretCache is a global secret storage cache that provides a
// simplified in-memory implementation of a secrets storage service, keyed by
// secret resource name. This can be used indirectly with the
// SecretManagerClient to access and modify secrets, or used directly.
var GlobalSecretCache map[string]StoredSecret

func init() {
	ResetGlobalSecretCache()
}

// ResetGlobalSecretCache resets the global fake secret storage cache to an
// initialized but clean state.
func ResetGlobalSecretCache() {
	GlobalSecretCache = map[string]StoredSecret{}
}

// SecretManagerClient provides a mock implementation of an
// affogato.SecretManagerClient. This makes it possible to introspect on
// inputs to the client and control the client's output. It provides some
// default implementations where possible. By default, it will issue the API
// calls to the fake GlobalSecretCache.
type SecretManagerClient struct {
	CreateSecretInput  *secretmanagerpb.CreateSecretRequest
	CreateSecretOutput *secretmanagerpb.Secret
	CreateSecretError  error

	GetSecretInput  *secretmanagerpb.GetSecretRequest
	GetSecretOutput *secretmanagerpb.Secret
	GetSecretError  error

	DeleteSecretInput *secretmanagerpb.DeleteSecretRequest
	DeleteSecretError error

	ListSecretsInput  *secretmanagerpb.ListSecretsRequest
	ListSecretsOutput []*secretmanagerpb.Secret
	ListSecretsError  error

	ListSecretVersionsInput  *secretmanagerpb.ListSecretVersionsRequest
	ListSecretVersionsOutput []*secretmanagerpb.SecretVersion
	ListSecretVersionsError  error

	AddSecretVersionInput  *secretmanagerpb.AddSecretVersionRequest
	AddSecretVersionOutput *secretmanagerpb.SecretVersion
	AddSecretVersionError  error

	AccessSecretVersionInput  *secretmanagerpb.AccessSecretVersionRequest
	AccessSecretVersionOutput *secretmanagerpb.AccessSecretVersionResponse
	AccessSecretVersionError  error

	DestroySecretVersionInput  *secretmanagerpb.DestroySecretVersionRequest
	DestroySecretVersionOutput *secretmanagerpb.SecretVersion
	DestroySecretVersionError  error

	CloseError error
}

// CreateSecret saves the input options and returns a new mock secret. The
// mock output can be customized. By default, it will create and save a cached
// mock secret based on the input in the global secret cache.
func (c *SecretManagerClient) CreateSecret(ctx context.Context, in *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
	c.CreateSecretInput = in

	if c.CreateSecretOutput != nil || c.CreateSecretError != nil {
		return c.CreateSecretOutput, c.CreateSecretError
	}

	if in.GetParent() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing parent")
	}
	if in.GetSecretId() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing secret ID")
	}

	newSecret := newStoredSecret(in, time.Now())
	if _, ok := GlobalSecretCache[newSecret.Name]; ok {
		return nil, status.Error(codes.AlreadyExists, "secret already exists")
	}

	GlobalSecretCache[newSecret.Name] = newSecret

	return exportSecret(newSecret), nil
}

// GetSecret saves the input options and returns an existing mock secret's
// metadata. The mock output can be customized. By default, it will return the
// cached mock secret if it exists in the global secret cache.
func (c *SecretManagerClient) GetSecret(ctx context.Context, in *secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
	c.GetSecretInput = in

	if c.GetSecretOutput != nil || c.GetSecretError != nil {
		return c.GetSecretOutput, c.GetSecretError
	}

	if in.GetName() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing secret name")
	}

	s, ok := GlobalSecretCache[in.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}

	return exportSecret(s), nil
}

// DeleteSecret saves the input options and deletes an existing mock secret
// along with all of its versions. The mock output can be customized. By
// default, it will delete the cached mock secret if it exists.
func (c *SecretManagerClient) DeleteSecret(ctx context.Context, in *secretmanagerpb.DeleteSecretRequest) error {
	c.DeleteSecretInput = in

	if c.DeleteSecretError != nil {
		return c.DeleteSecretError
	}

	if in.GetName() == "" {
		return status.Error(codes.InvalidArgument, "missing secret name")
	}

	if _, ok := GlobalSecretCache[in.GetName()]; !ok {
		return status.Error(codes.NotFound, "secret not found")
	}

	delete(GlobalSecretCache, in.GetName())

	return nil
}

// ListSecrets saves the input options and returns all mock secrets under the
// parent. The mock output can be customized. By default, it will return all
// matching cached mock secrets in the global secret cache, ordered by name.
func (c *SecretManagerClient) ListSecrets(ctx context.Context, in *secretmanagerpb.ListSecretsRequest) ([]*secretmanagerpb.Secret, error) {
	c.ListSecretsInput = in

	if c.ListSecretsOutput != nil || c.ListSecretsError != nil {
		return c.ListSecretsOutput, c.ListSecretsError
	}

	if in.GetParent() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing parent")
	}

	prefix := in.GetParent() + "/secrets/"

	var names []string
	for name := range GlobalSecretCache {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var converted []*secretmanagerpb.Secret
	for _, name := range names {
		converted = append(converted, exportSecret(GlobalSecretCache[name]))
	}

	return converted, nil
}

// ListSecretVersions saves the input options and returns all mock versions of
// a secret in creation order. The mock output can be customized. By default,
// it will return the cached mock secret's versions if the secret exists in
// the global secret cache.
func (c *SecretManagerClient) ListSecretVersions(ctx context.Context, in *secretmanagerpb.ListSecretVersionsRequest) ([]*secretmanagerpb.SecretVersion, error) {
	c.ListSecretVersionsInput = in

	if c.ListSecretVersionsOutput != nil || c.ListSecretVersionsError != nil {
		return c.ListSecretVersionsOutput, c.ListSecretVersionsError
	}

	if in.GetParent() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing parent")
	}

	s, ok := GlobalSecretCache[in.GetParent()]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}

	var converted []*secretmanagerpb.SecretVersion
	for _, v := range s.Versions {
		converted = append(converted, exportSecretVersion(v))
	}

	return converted, nil
}

// AddSecretVersion saves the input options and returns a new mock secret
// version. The mock output can be customized. By default, it will append a
// new version to the cached mock secret if it exists in the global secret
// cache.
func (c *SecretManagerClient) AddSecretVersion(ctx context.Context, in *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	c.AddSecretVersionInput = in

	if c.AddSecretVersionOutput != nil || c.AddSecretVersionError != nil {
		return c.AddSecretVersionOutput, c.AddSecretVersionError
	}

	if in.GetParent() == "" {
		return nil, status.Error(codes.InvalidArgument, "missing parent")
	}
	if in.GetPayload() == nil {
		return nil, status.Error(codes.InvalidArgument, "missing payload")
	}

	s, ok := GlobalSecretCache[in.GetParent()]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}

	payload := in.GetPayload()
	if payload.DataCrc32C != nil && int64(crc32.Checksum(payload.GetData(), crc32cTable)) != payload.GetDataCrc32C() {
		return nil, status.Error(codes.InvalidArgument, "payload checksum mismatch")
	}

	newVersion := StoredSecretVersion{
		Name:    fmt.Sprintf("%s/versions/%d", s.Name, len(s.Versions)+1),
		Payload: payload.GetData(),
		Created: time.Now(),
	}
	s.Versions = append(s.Versions, newVersion)
	GlobalSecretCache[s.Name] = s

	return exportSecretVersion(newVersion), nil
}

// AccessSecretVersion saves the input options and returns an existing mock
// secret version's payload. The mock output can be customized. By default, it
// will return the cached mock version's payload if it exists in the global
// secret cache, resolving the "latest" token to the most recently added
// version. A destroyed version resolves to a response without a payload.
func (c *SecretManagerClient) AccessSecretVersion(ctx context.Context, in *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	c.AccessSecretVersionInput = in

	if c.AccessSecretVersionOutput != nil || c.AccessSecretVersionError != nil {
		return c.AccessSecretVersionOutput, c.AccessSecretVersionError
	}

	_, v, err := c.getSecretVersion(in.GetName())
	if err != nil {
		return nil, err
	}

	if v.IsDestroyed {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Name: v.Name,
		}, nil
	}

	return &secretmanagerpb.AccessSecretVersionResponse{
		Name: v.Name,
		Payload: &secretmanagerpb.SecretPayload{
			Data:       v.Payload,
			DataCrc32C: utility.ToInt64Ptr(int64(crc32.Checksum(v.Payload, crc32cTable))),
		},
	}, nil
}

// DestroySecretVersion saves the input options and destroys an existing mock
// secret version's payload. The mock output can be customized. By default, it
// will wipe the cached mock version's payload and mark it destroyed if it
// exists in the global secret cache.
func (c *SecretManagerClient) DestroySecretVersion(ctx context.Context, in *secretmanagerpb.DestroySecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	c.DestroySecretVersionInput = in

	if c.DestroySecretVersionOutput != nil || c.DestroySecretVersionError != nil {
		return c.DestroySecretVersionOutput, c.DestroySecretVersionError
	}

	s, v, err := c.getSecretVersion(in.GetName())
	if err != nil {
		return nil, err
	}

	if v.IsDestroyed {
		return nil, status.Error(codes.FailedPrecondition, "version is already destroyed")
	}

	for i := range s.Versions {
		if s.Versions[i].Name == v.Name {
			s.Versions[i].Payload = nil
			s.Versions[i].IsDestroyed = true
			GlobalSecretCache[s.Name] = *s
			return exportSecretVersion(s.Versions[i]), nil
		}
	}

	return nil, status.Error(codes.NotFound, "version not found")
}

// getSecretVersion resolves a version resource name, including the "latest"
// token, against the global secret cache.
func (c *SecretManagerClient) getSecretVersion(name string) (*StoredSecret, *StoredSecretVersion, error) {
	if name == "" {
		return nil, nil, status.Error(codes.InvalidArgument, "missing version name")
	}

	idx := strings.LastIndex(name, "/versions/")
	if idx < 0 {
		return nil, nil, status.Error(codes.InvalidArgument, "malformed version name")
	}
	secretName := name[:idx]
	version := name[idx+len("/versions/"):]

	s, ok := GlobalSecretCache[secretName]
	if !ok {
		return nil, nil, status.Error(codes.NotFound, "secret not found")
	}

	var num int
	if version == affogato.LatestVersion {
		num = len(s.Versions)
	} else {
		parsed, err := strconv.Atoi(version)
		if err != nil {
			return nil, nil, status.Error(codes.InvalidArgument, "malformed version number")
		}
		num = parsed
	}

	if num < 1 || num > len(s.Versions) {
		return nil, nil, status.Error(codes.NotFound, "version not found")
	}

	return &s, &s.Versions[num-1], nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *SecretManagerClient) Close(ctx context.Context) error {
	if c.CloseError != nil {
		return c.CloseError
	}
	return nil
}
