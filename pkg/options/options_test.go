package options

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

func TestDefaultsApplied(t *testing.T) {
	o, err := New(DefaultListChunkSize)
	require.NoError(t, err)
	require.Equal(t, DefaultListChunkSize, o.ChunkSize)
	require.Equal(t, DefaultCacheCapacity, o.CacheCapacity)
	require.NotNil(t, o.Logger)
	require.NotNil(t, o.Fs)
}

func TestOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	o, err := New(DefaultDictChunkSize,
		WithChunkSize(64),
		WithCacheCapacity(8),
		WithFilesystem(fs),
	)
	require.NoError(t, err)
	require.Equal(t, 64, o.ChunkSize)
	require.Equal(t, 8, o.CacheCapacity)
	require.Same(t, fs, o.Fs)
}

func TestChunkSizeBelowMinimumRejected(t *testing.T) {
	_, err := New(DefaultListChunkSize, WithChunkSize(3))
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))

	ve, ok := errors.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, "ChunkSize", ve.Field())
	require.Equal(t, 3, ve.Provided())
}

func TestCacheCapacityBelowMinimumRejected(t *testing.T) {
	_, err := New(DefaultListChunkSize, WithCacheCapacity(1))
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))
}

func TestValidateRoot(t *testing.T) {
	require.Error(t, ValidateRoot(""))
	require.Error(t, ValidateRoot("   "))
	require.NoError(t, ValidateRoot("/db"))
}
