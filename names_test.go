package affogato

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretName(t *testing.T) {
	assert.Equal(t, "projects/my-project/secrets/my-secret", SecretName("projects/my-project", "my-secret"))
}

func TestSecretVersionName(t *testing.T) {
	t.Run("NumberedVersion", func(t *testing.T) {
		assert.Equal(t, "projects/my-project/secrets/my-secret/versions/5", SecretVersionName("projects/my-project", "my-secret", FormatVersion(5)))
	})
	t.Run("LatestVersion", func(t *testing.T) {
		assert.Equal(t, "projects/my-project/secrets/my-secret/versions/latest", SecretVersionName("projects/my-project", "my-secret", LatestVersion))
	})
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "1", FormatVersion(1))
	assert.Equal(t, "42", FormatVersion(42))
}

func TestNormalizeParent(t *testing.T) {
	t.Run("AddsPrefixToBareProjectID", func(t *testing.T) {
		assert.Equal(t, "projects/my-project", NormalizeParent("my-project"))
	})
	t.Run("KeepsFullResourceName", func(t *testing.T) {
		assert.Equal(t, "projects/my-project", NormalizeParent("projects/my-project"))
	})
	t.Run("KeepsEmptyString", func(t *testing.T) {
		assert.Zero(t, NormalizeParent(""))
	})
}
