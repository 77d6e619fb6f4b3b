// Package auth provides local email+password authentication for estatedesk.
//
// # Credential scheme
//
// Each user has one record in the encrypted credential store, keyed by
// "user_auth_data_" plus the normalized (trimmed, lowercased) email:
//
//	{"salt": "...", "hashedPassword": "...", "role": "user"}
//
// The digest is SHA-256 over password || salt || pepper, where the salt is
// random per user and the pepper is a fixed application constant. Hashing
// is deterministic by design so the stored digest can be recomputed and
// compared on sign-in.
//
// # Session state
//
// The session store holds non-sensitive flags and display cache: the
// logged-in flag, current and remembered emails, role, first/last name,
// phone, and theme mode. Sign-out clears only the logged-in flag and the
// current email; the rest survives on purpose so the next launch can
// greet the user and pre-fill the sign-in form.
//
// # Failure contract
//
// Credential store failures abort the flow with an error. Session store
// failures never do: writes are logged and dropped, reads fall back to
// zero values, and the app behaves as "not logged in".
package auth
