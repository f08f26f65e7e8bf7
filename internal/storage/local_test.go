package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveExistsRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	assert.False(t, s.Exists("data.seg"))

	path, err := s.Save("data.seg", strings.NewReader("readings"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data.seg"), path)
	assert.True(t, s.Exists("data.seg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "readings", string(data))

	require.NoError(t, s.Remove("data.seg"))
	assert.False(t, s.Exists("data.seg"))

	// Removing again is not an error
	require.NoError(t, s.Remove("data.seg"))
}

func TestStore_PathStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	// A declared filename must not escape the upload directory
	assert.Equal(t, filepath.Join(dir, "sneaky.seg"), s.Path("../../sneaky.seg"))
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
