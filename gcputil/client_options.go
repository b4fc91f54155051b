package gcputil

import (
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

// ClientOptions represent GCP client options such as authentication and
// making requests.
type ClientOptions struct {
	// CredentialsFile is the path to a service account key file. If neither
	// CredentialsFile nor CredentialsJSON is specified, Application Default
	// Credentials are used.
	CredentialsFile *string
	// CredentialsJSON is the raw contents of a service account key. It is
	// mutually exclusive with CredentialsFile.
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint to connect to (e.g. a local
	// emulator).
	Endpoint *string
	// WithoutAuthentication disables authentication entirely. This is only
	// suitable for connecting to emulators.
	WithoutAuthentication *bool
	// DialOpts are additional gRPC dial options applied to the underlying
	// connection.
	DialOpts []grpc.DialOption
	// RetryOpts sets the retry policy for API requests.
	RetryOpts *utility.RetryOptions
}

// NewClientOptions returns new unconfigured client options.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{}
}

// SetCredentialsFile sets the path to the service account key file.
func (o *ClientOptions) SetCredentialsFile(file string) *ClientOptions {
	o.CredentialsFile = &file
	return o
}

// SetCredentialsJSON sets the raw service account key contents.
func (o *ClientOptions) SetCredentialsJSON(creds []byte) *ClientOptions {
	o.CredentialsJSON = creds
	return o
}

// SetEndpoint sets the API endpoint to connect to.
func (o *ClientOptions) SetEndpoint(endpoint string) *ClientOptions {
	o.Endpoint = &endpoint
	return o
}

// SetWithoutAuthentication disables authentication for the client.
func (o *ClientOptions) SetWithoutAuthentication(withoutAuth bool) *ClientOptions {
	o.WithoutAuthentication = &withoutAuth
	return o
}

// SetDialOpts sets additional gRPC dial options for the underlying
// connection.
func (o *ClientOptions) SetDialOpts(opts ...grpc.DialOption) *ClientOptions {
	o.DialOpts = opts
	return o
}

// SetRetryOptions sets the client's retry options.
func (o *ClientOptions) SetRetryOptions(opts utility.RetryOptions) *ClientOptions {
	o.RetryOpts = &opts
	return o
}

// Validate checks that the given options are consistent and sets defaults for
// unspecified options.
func (o *ClientOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.CredentialsFile != nil && o.CredentialsJSON != nil, "cannot provide both a credentials file and raw credentials")
	catcher.NewWhen(utility.FromBoolPtr(o.WithoutAuthentication) && (o.CredentialsFile != nil || o.CredentialsJSON != nil), "cannot disable authentication when credentials are given")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.RetryOpts == nil {
		o.RetryOpts = &utility.RetryOptions{}
	}
	o.RetryOpts.Validate()

	return nil
}

// GetRetryOptions returns the retry options for the client.
func (o *ClientOptions) GetRetryOptions() utility.RetryOptions {
	if o.RetryOpts == nil {
		o.RetryOpts = &utility.RetryOptions{}
	}
	return *o.RetryOpts
}

// GetClientOptions assembles the options to construct an authenticated API
// client. The underlying gRPC connection is instrumented with OpenTelemetry.
func (o *ClientOptions) GetClientOptions() ([]option.ClientOption, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if o.CredentialsFile != nil {
		opts = append(opts, option.WithCredentialsFile(*o.CredentialsFile))
	}
	if o.CredentialsJSON != nil {
		opts = append(opts, option.WithCredentialsJSON(o.CredentialsJSON))
	}
	if o.Endpoint != nil {
		opts = append(opts, option.WithEndpoint(*o.Endpoint))
	}
	if utility.FromBoolPtr(o.WithoutAuthentication) {
		opts = append(opts, option.WithoutAuthentication())
	}

	dialOpts := append([]grpc.DialOption{grpc.WithStatsHandler(otelgrpc.NewClientHandler())}, o.DialOpts...)
	for _, d := range dialOpts {
		opts = append(opts, option.WithGRPCDialOption(d))
	}

	return opts, nil
}
