package keybackend_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjavier441/rjs2/keybackend"
)

func TestLoadKey_Inline(t *testing.T) {
	t.Parallel()

	key, generated, err := keybackend.LoadKey(keybackend.KeyConfig{
		Key: base64.StdEncoding.EncodeToString(testKey()),
	})

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, testKey(), key)
}

func TestLoadKey_FileOverridesInline(t *testing.T) {
	t.Parallel()

	fileKey := make([]byte, keybackend.KeySize)
	path := writeTestFile(t, keybackend.EncodeKey(fileKey))

	key, generated, err := keybackend.LoadKey(keybackend.KeyConfig{
		Key:  keybackend.EncodeKey(testKey()),
		File: path,
	})

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, fileKey, key, "file key should override inline key")
}

func TestLoadKey_Generated(t *testing.T) {
	t.Parallel()

	key, generated, err := keybackend.LoadKey(keybackend.KeyConfig{})

	require.NoError(t, err)
	assert.True(t, generated)
	assert.Len(t, key, keybackend.KeySize)
}

func TestLoadKey_InvalidInline(t *testing.T) {
	t.Parallel()

	_, _, err := keybackend.LoadKey(keybackend.KeyConfig{Key: "nope"})

	require.Error(t, err)
	assert.ErrorIs(t, err, keybackend.ErrInvalidKey)
	assert.Contains(t, err.Error(), "inline key")
}

func TestLoadKey_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := keybackend.LoadKey(keybackend.KeyConfig{File: "/nonexistent/csrf.key"})

	assert.Error(t, err)
}
