package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func TestLoadOrCreateKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "credentials.key")

	key, err := LoadOrCreateKey(keyPath)
	require.NoError(t, err)
	assert.Len(t, key, chacha20poly1305.KeySize)

	// A second load returns the same key, not a fresh one
	again, err := LoadOrCreateKey(keyPath)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrCreateKey_RejectsTruncatedKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "credentials.key")
	require.NoError(t, os.WriteFile(keyPath, []byte("short"), 0o600))

	_, err := LoadOrCreateKey(keyPath)
	assert.Error(t, err)
}

func TestSecureStore_RoundTripAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "credentials.dat")

	key, err := LoadOrCreateKey(filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)

	store, err := NewSecureStore(storePath, key)
	require.NoError(t, err)
	require.NoError(t, store.Write("user_auth_data_user@example.com", `{"salt":"abc"}`))

	reopened, err := NewSecureStore(storePath, key)
	require.NoError(t, err)

	value, ok, err := reopened.Read("user_auth_data_user@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"salt":"abc"}`, value)
}

func TestSecureStore_WrongKeyFailsToOpen(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "credentials.dat")

	key, err := LoadOrCreateKey(filepath.Join(dir, "right.key"))
	require.NoError(t, err)

	store, err := NewSecureStore(storePath, key)
	require.NoError(t, err)
	require.NoError(t, store.Write("secret", "value"))

	otherKey, err := LoadOrCreateKey(filepath.Join(dir, "wrong.key"))
	require.NoError(t, err)

	_, err = NewSecureStore(storePath, otherKey)
	assert.ErrorIs(t, err, ErrWrongKey)
}

func TestSecureStore_FileIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "credentials.dat")

	key, err := LoadOrCreateKey(filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)

	store, err := NewSecureStore(storePath, key)
	require.NoError(t, err)
	require.NoError(t, store.Write("secret", "hunter2"))

	raw, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "secret")
}

func TestSecureStore_RejectsBadKeySize(t *testing.T) {
	_, err := NewSecureStore(filepath.Join(t.TempDir(), "credentials.dat"), []byte("too-short"))
	assert.Error(t, err)
}

func TestSecureStore_GarbageFileReturnsWrongKey(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "credentials.dat")
	require.NoError(t, os.WriteFile(storePath, []byte("x"), 0o600))

	key, err := LoadOrCreateKey(filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)

	_, err = NewSecureStore(storePath, key)
	assert.ErrorIs(t, err, ErrWrongKey)
}
