package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcas-dev/go-session/store"
)

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := store.NewFile(path)
	require.NoError(t, err)

	v, err := s.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set("token", "abc"))
	require.NoError(t, s.Set("refresh", "xyz"))

	v, err = s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Remove("token"))

	v, err = s.Get("token")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := store.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("token", "persisted"))

	reopened, err := store.NewFile(path)
	require.NoError(t, err)

	v, err := reopened.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

func TestFileCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "credentials.json")

	s, err := store.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("token", "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := store.NewFile(path)
	assert.Error(t, err)
}

func TestFileLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	s, err := store.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("token", "abc"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "credentials.json", entries[0].Name())
}
