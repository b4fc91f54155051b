package secret

import (
	"context"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/evergreen-ci/utility"
	"github.com/frothhq/affogato/gcputil"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BasicSecretManagerClient provides an affogato.SecretManagerClient
// implementation that wraps the Secret Manager API. It supports retrying
// requests using exponential backoff and jitter.
type BasicSecretManagerClient struct {
	opts gcputil.ClientOptions
	sm   *secretmanager.Client
}

// NewBasicSecretManagerClient creates a new Secret Manager client from the
// given options. The underlying connection is established lazily on the first
// API call.
func NewBasicSecretManagerClient(opts gcputil.ClientOptions) (*BasicSecretManagerClient, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &BasicSecretManagerClient{opts: opts}, nil
}

func (c *BasicSecretManagerClient) setup(ctx context.Context) error {
	if c.sm != nil {
		return nil
	}

	copts, err := c.opts.GetClientOptions()
	if err != nil {
		return errors.Wrap(err, "getting client options")
	}

	sm, err := secretmanager.NewClient(ctx, copts...)
	if err != nil {
		return errors.Wrap(err, "initializing client")
	}

	c.sm = sm

	return nil
}

// CreateSecret creates a new secret container under a parent project.
func (c *BasicSecretManagerClient) CreateSecret(ctx context.Context, in *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *secretmanagerpb.Secret
	var err error
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("CreateSecret", in)
		out, err = c.sm.CreateSecret(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSecret gets an existing secret's metadata.
func (c *BasicSecretManagerClient) GetSecret(ctx context.Context, in *secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *secretmanagerpb.Secret
	var err error
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("GetSecret", in)
		out, err = c.sm.GetSecret(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSecret deletes an existing secret and all of its versions.
func (c *BasicSecretManagerClient) DeleteSecret(ctx context.Context, in *secretmanagerpb.DeleteSecretRequest) error {
	if err := c.setup(ctx); err != nil {
		return errors.Wrap(err, "setting up client")
	}

	return utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("DeleteSecret", in)
		err := c.sm.DeleteSecret(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions())
}

// ListSecrets lists all secrets under a parent project in the order the
// service returns them. The underlying iterator pages through results
// transparently, so the returned sequence is complete.
func (c *BasicSecretManagerClient) ListSecrets(ctx context.Context, in *secretmanagerpb.ListSecretsRequest) ([]*secretmanagerpb.Secret, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out []*secretmanagerpb.Secret
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("ListSecrets", in)
		out = nil
		it := c.sm.ListSecrets(ctx, in)
		for {
			s, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				grip.Debug(message.WrapError(err, msg))
				if c.isNonRetryableErrorCode(status.Code(err)) {
					return false, err
				}
				return true, err
			}
			out = append(out, s)
		}
		return true, nil
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSecretVersions lists all versions under a secret in the order the
// service returns them. The underlying iterator pages through results
// transparently, so the returned sequence is complete.
func (c *BasicSecretManagerClient) ListSecretVersions(ctx context.Context, in *secretmanagerpb.ListSecretVersionsRequest) ([]*secretmanagerpb.SecretVersion, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out []*secretmanagerpb.SecretVersion
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("ListSecretVersions", in)
		out = nil
		it := c.sm.ListSecretVersions(ctx, in)
		for {
			v, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				grip.Debug(message.WrapError(err, msg))
				if c.isNonRetryableErrorCode(status.Code(err)) {
					return false, err
				}
				return true, err
			}
			out = append(out, v)
		}
		return true, nil
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// AddSecretVersion adds a new version containing a payload to an existing
// secret.
func (c *BasicSecretManagerClient) AddSecretVersion(ctx context.Context, in *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *secretmanagerpb.SecretVersion
	var err error
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("AddSecretVersion", in)
		out, err = c.sm.AddSecretVersion(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// AccessSecretVersion returns the payload of an existing secret version.
func (c *BasicSecretManagerClient) AccessSecretVersion(ctx context.Context, in *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *secretmanagerpb.AccessSecretVersionResponse
	var err error
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("AccessSecretVersion", in)
		out, err = c.sm.AccessSecretVersion(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// DestroySecretVersion irreversibly destroys an existing secret version's
// payload.
func (c *BasicSecretManagerClient) DestroySecretVersion(ctx context.Context, in *secretmanagerpb.DestroySecretVersionRequest) (*secretmanagerpb.SecretVersion, error) {
	if err := c.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setting up client")
	}

	var out *secretmanagerpb.SecretVersion
	var err error
	if err := utility.Retry(ctx, func() (bool, error) {
		msg := gcputil.MakeAPILogMessage("DestroySecretVersion", in)
		out, err = c.sm.DestroySecretVersion(ctx, in)
		if err != nil {
			grip.Debug(message.WrapError(err, msg))
			if c.isNonRetryableErrorCode(status.Code(err)) {
				return false, err
			}
		}
		return true, err
	}, c.opts.GetRetryOptions()); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the client and cleans up its resources.
func (c *BasicSecretManagerClient) Close(ctx context.Context) error {
	if c.sm == nil {
		return nil
	}

	err := c.sm.Close()
	c.sm = nil

	return errors.Wrap(err, "closing client")
}

func (c *BasicSecretManagerClient) isNonRetryableErrorCode(code codes.Code) bool {
	switch code {
	case codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.FailedPrecondition,
		codes.OutOfRange:
		return true
	default:
		return false
	}
}
