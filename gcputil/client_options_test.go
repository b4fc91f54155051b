package gcputil

import (
	"testing"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestClientOptions(t *testing.T) {
	t.Run("SetCredentialsFile", func(t *testing.T) {
		file := "/path/to/key.json"
		opts := NewClientOptions().SetCredentialsFile(file)
		require.NotNil(t, opts.CredentialsFile)
		assert.Equal(t, file, *opts.CredentialsFile)
	})
	t.Run("SetCredentialsJSON", func(t *testing.T) {
		creds := []byte(`{"type":"service_account"}`)
		opts := NewClientOptions().SetCredentialsJSON(creds)
		assert.Equal(t, creds, opts.CredentialsJSON)
	})
	t.Run("SetEndpoint", func(t *testing.T) {
		endpoint := "localhost:8085"
		opts := NewClientOptions().SetEndpoint(endpoint)
		require.NotNil(t, opts.Endpoint)
		assert.Equal(t, endpoint, *opts.Endpoint)
	})
	t.Run("SetWithoutAuthentication", func(t *testing.T) {
		opts := NewClientOptions().SetWithoutAuthentication(true)
		require.NotNil(t, opts.WithoutAuthentication)
		assert.True(t, *opts.WithoutAuthentication)
	})
	t.Run("SetDialOpts", func(t *testing.T) {
		dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
		opts := NewClientOptions().SetDialOpts(dialOpts...)
		assert.Len(t, opts.DialOpts, 1)
	})
	t.Run("SetRetryOptions", func(t *testing.T) {
		retryOpts := utility.RetryOptions{
			MaxAttempts: 10,
			MinDelay:    100 * time.Millisecond,
			MaxDelay:    time.Second,
		}
		opts := NewClientOptions().SetRetryOptions(retryOpts)
		require.NotNil(t, opts.RetryOpts)
		assert.Equal(t, retryOpts, *opts.RetryOpts)
	})
	t.Run("Validate", func(t *testing.T) {
		t.Run("SucceedsWithZeroOptions", func(t *testing.T) {
			assert.NoError(t, NewClientOptions().Validate())
		})
		t.Run("SucceedsWithCredentialsFile", func(t *testing.T) {
			opts := NewClientOptions().SetCredentialsFile("/path/to/key.json")
			assert.NoError(t, opts.Validate())
		})
		t.Run("FailsWithBothCredentialsFileAndJSON", func(t *testing.T) {
			opts := NewClientOptions().
				SetCredentialsFile("/path/to/key.json").
				SetCredentialsJSON([]byte("{}"))
			assert.Error(t, opts.Validate())
		})
		t.Run("FailsWithCredentialsAndWithoutAuthentication", func(t *testing.T) {
			opts := NewClientOptions().
				SetCredentialsFile("/path/to/key.json").
				SetWithoutAuthentication(true)
			assert.Error(t, opts.Validate())
		})
		t.Run("DefaultsRetryOptions", func(t *testing.T) {
			opts := NewClientOptions()
			require.NoError(t, opts.Validate())
			assert.NotZero(t, opts.RetryOpts)
		})
	})
	t.Run("GetClientOptions", func(t *testing.T) {
		t.Run("SucceedsWithZeroOptions", func(t *testing.T) {
			copts, err := NewClientOptions().GetClientOptions()
			require.NoError(t, err)
			// The instrumented dial option is always included.
			assert.NotEmpty(t, copts)
		})
		t.Run("IncludesAllConfiguredOptions", func(t *testing.T) {
			copts, err := NewClientOptions().
				SetEndpoint("localhost:8085").
				SetWithoutAuthentication(true).
				SetDialOpts(grpc.WithTransportCredentials(insecure.NewCredentials())).
				GetClientOptions()
			require.NoError(t, err)
			assert.True(t, len(copts) >= 4)
		})
		t.Run("FailsWithInvalidOptions", func(t *testing.T) {
			copts, err := NewClientOptions().
				SetCredentialsFile("/path/to/key.json").
				SetCredentialsJSON([]byte("{}")).
				GetClientOptions()
			assert.Error(t, err)
			assert.Zero(t, copts)
		})
	})
}
