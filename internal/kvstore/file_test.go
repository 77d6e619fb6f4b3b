package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteReadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Write("logged_in", "true"))
	require.NoError(t, store.Write("theme_mode", "dark"))

	value, ok, err := store.Read("logged_in")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", value)

	// Absent key: ok=false, no error
	_, ok, err = store.Read("never_written")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete("logged_in"))
	_, ok, err = store.Read("logged_in")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is a no-op
	require.NoError(t, store.Delete("logged_in"))
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write("remember_me_email", "user@example.com"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	value, ok, err := reopened.Read("remember_me_email")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", value)
}

func TestFileStore_DeleteAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write("a", "1"))
	require.NoError(t, store.Write("b", "2"))

	require.NoError(t, store.DeleteAll())

	for _, key := range []string{"a", "b"} {
		_, ok, err := store.Read(key)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// The wipe is persisted, not just in memory
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok, err := reopened.Read("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err, "a corrupt session file must not prevent startup")

	_, ok, err := store.Read("anything")
	require.NoError(t, err)
	assert.False(t, ok)

	// The store is fully usable after recovery
	require.NoError(t, store.Write("key", "value"))
	value, ok, err := store.Read("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestFileStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write("key", "value"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
