// Package kvstore provides the two flat key-value stores behind the auth
// layer.
//
// FileStore is a plain JSON file holding non-sensitive session and display
// state (logged-in flag, remembered email, cached names, theme mode). A
// corrupt file is logged and treated as empty so the app stays usable.
//
// SecureStore holds one credential record per user, sealed with
// XChaCha20-Poly1305 under a locally generated key file. Failures here are
// surfaced to the caller; losing a credential write must abort sign-up.
//
// Both stores share the Store contract: Read of a missing key returns
// ok=false with a nil error.
package kvstore
