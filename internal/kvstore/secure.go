// ABOUTME: Encrypted key-value store for per-user credential records
// ABOUTME: XChaCha20-Poly1305 over the serialized map, keyed by a local key file

package kvstore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrWrongKey is returned when the store file cannot be decrypted with the
// provided key.
var ErrWrongKey = errors.New("store cannot be decrypted with this key")

// SecureStore is the credential store: a string map sealed with
// XChaCha20-Poly1305 before it touches disk. The key lives in a separate
// 0600 key file so the store file alone is useless.
//
// Unlike the session store, failures here are fatal to the caller: a
// credential that cannot be persisted must abort the auth flow.
type SecureStore struct {
	path   string
	key    []byte
	logger *slog.Logger

	mu   sync.Mutex
	data map[string]string
}

// LoadOrCreateKey reads the 32-byte key file at path, generating a fresh
// random key (0600) if the file does not exist.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("key file %s has %d bytes, want %d", path, len(key), chacha20poly1305.KeySize)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	return key, nil
}

// NewSecureStore opens (or creates) an encrypted store at the given path.
// The key must be chacha20poly1305.KeySize bytes, normally from
// LoadOrCreateKey. A missing store file is treated as an empty store;
// a store file that does not decrypt returns ErrWrongKey.
func NewSecureStore(path string, key []byte) (*SecureStore, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key has %d bytes, want %d", len(key), chacha20poly1305.KeySize)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &SecureStore{
		path:   path,
		key:    key,
		logger: slog.Default().With("component", "securestore"),
		data:   make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if len(raw) > 0 {
		plain, err := s.open(raw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(plain, &s.data); err != nil {
			return nil, fmt.Errorf("decoding store: %w", err)
		}
	}

	return s, nil
}

// Write sets a key and persists the store.
func (s *SecureStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.flush()
}

// Read returns the value for a key. A missing key returns ok=false and no error.
func (s *SecureStore) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// Delete removes a key and persists the store. Deleting a missing key is a no-op.
func (s *SecureStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// DeleteAll removes every key and persists the empty store.
func (s *SecureStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	return s.flush()
}

// flush seals and rewrites the backing file. Callers must hold s.mu.
func (s *SecureStore) flush() error {
	plain, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	sealed, err := s.seal(plain)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// seal encrypts plaintext as nonce || ciphertext.
func (s *SecureStore) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plain, nil), nil
}

// open decrypts a nonce || ciphertext blob.
func (s *SecureStore) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, ErrWrongKey
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongKey
	}
	return plain, nil
}

// Ensure SecureStore implements Store
var _ Store = (*SecureStore)(nil)
