package storage

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndOpen(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, err := store.Save("Batch.CSV", strings.NewReader("type_id,valeur_id\n"))
	require.NoError(t, err)
	assert.Equal(t, ".csv", filepath.Ext(path))

	rc, err := store.Open(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "type_id,valeur_id\n", string(data))

	require.NoError(t, store.Remove(path))
	_, err = store.Open(path)
	assert.Error(t, err)
}

func TestFileStore_RejectsPathsOutsideRoot(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, store.Remove("../x.csv"), ErrInvalidPath)
}
