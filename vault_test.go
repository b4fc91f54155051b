package affogato

import (
	"testing"

	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessVersionOptions(t *testing.T) {
	t.Run("NewAccessVersionOptions", func(t *testing.T) {
		opts := NewAccessVersionOptions()
		require.NotZero(t, opts)
		assert.Zero(t, *opts)
	})
	t.Run("SetVersion", func(t *testing.T) {
		opts := NewAccessVersionOptions().SetVersion(3)
		assert.Equal(t, 3, utility.FromIntPtr(opts.Version))
	})
	t.Run("Validate", func(t *testing.T) {
		t.Run("SucceedsWithEmpty", func(t *testing.T) {
			assert.NoError(t, NewAccessVersionOptions().Validate())
		})
		t.Run("SucceedsWithPositiveVersion", func(t *testing.T) {
			assert.NoError(t, NewAccessVersionOptions().SetVersion(1).Validate())
		})
		t.Run("FailsWithZeroVersion", func(t *testing.T) {
			assert.Error(t, NewAccessVersionOptions().SetVersion(0).Validate())
		})
		t.Run("FailsWithNegativeVersion", func(t *testing.T) {
			assert.Error(t, NewAccessVersionOptions().SetVersion(-1).Validate())
		})
	})
}

func TestMergeAccessVersionOptions(t *testing.T) {
	t.Run("ReturnsEmptyWithNoOptions", func(t *testing.T) {
		opts := MergeAccessVersionOptions()
		require.NotZero(t, opts)
		assert.Zero(t, *opts)
	})
	t.Run("IgnoresNilOptions", func(t *testing.T) {
		opts := MergeAccessVersionOptions(nil, NewAccessVersionOptions().SetVersion(2), nil)
		assert.Equal(t, 2, utility.FromIntPtr(opts.Version))
	})
	t.Run("OverwritesConflictingOptionsInOrder", func(t *testing.T) {
		opts := MergeAccessVersionOptions(
			NewAccessVersionOptions().SetVersion(1),
			NewAccessVersionOptions().SetVersion(2),
		)
		assert.Equal(t, 2, utility.FromIntPtr(opts.Version))
	})
}
