package keybackend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjavier441/rjs2/keybackend"
)

func TestWriteAndLoadKeyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "secrets", "csrf.key")
	key := testKey()

	require.NoError(t, keybackend.WriteKeyFile(path, key))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := keybackend.LoadKeyFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)
}

func TestWriteKeyFile_WrongSize(t *testing.T) {
	t.Parallel()

	err := keybackend.WriteKeyFile(filepath.Join(t.TempDir(), "k"), []byte("short"))

	assert.ErrorIs(t, err, keybackend.ErrInvalidKey)
}

func TestLoadKeyFromFile_NotFound(t *testing.T) {
	t.Parallel()

	_, err := keybackend.LoadKeyFromFile("/nonexistent/path/csrf.key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read key file")
}

func TestLoadKeyFromFile_InvalidContent(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "definitely not a key")

	_, err := keybackend.LoadKeyFromFile(path)
	assert.ErrorIs(t, err, keybackend.ErrInvalidKey)
}

func writeTestFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "csrf.key")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}
