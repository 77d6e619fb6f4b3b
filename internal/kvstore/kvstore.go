// ABOUTME: Key-value store contract shared by the session and credential stores
// ABOUTME: Reads of a missing key report absence, never an error

package kvstore

// Store is a flat string key-value store. Read reports a missing key via
// the boolean, not an error: only I/O or decode failures are errors.
type Store interface {
	Write(key, value string) error
	Read(key string) (value string, ok bool, err error)
	Delete(key string) error
	DeleteAll() error
}
