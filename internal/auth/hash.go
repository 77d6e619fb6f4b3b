// ABOUTME: Password hashing for the local credential store
// ABOUTME: SHA-256 over password, per-user salt, and a fixed application pepper

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// appPepper is a fixed application-wide secret appended to every hash
// input after the per-user salt. It is a design constant, not
// user-configurable.
const appPepper = "estatedesk-credential-pepper-v1"

// saltBytes is the length of the random per-user salt.
const saltBytes = 16

// hashPassword computes the deterministic credential digest
// SHA-256(password || salt || appPepper), hex-encoded. The same password
// and salt always produce the same digest; different salts diverge.
func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt + appPepper))
	return hex.EncodeToString(sum[:])
}

// generateSalt returns a fresh random per-user salt, generated once at
// sign-up and immutable afterwards.
func generateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}
