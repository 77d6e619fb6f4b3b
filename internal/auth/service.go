// ABOUTME: Auth service orchestrating sign-up, sign-in, sign-out, and session reads
// ABOUTME: Secrets live in the credential store, display state in the session store

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/diamondcity/estatedesk/internal/kvstore"
)

// Roles assignable at sign-up. Sign-in never changes a stored role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrEmailTaken is returned when signing up with an email that already has
// a credential record.
var ErrEmailTaken = errors.New("an account with this email already exists")

// ErrInvalidCredentials is returned when sign-in fails, for a missing
// record, a corrupt record, or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

// credentialKeyPrefix namespaces per-user records in the credential store.
const credentialKeyPrefix = "user_auth_data_"

// Session store keys.
const (
	keyLoggedIn         = "logged_in"
	keyRememberMeEmail  = "remember_me_email"
	keyCurrentUserEmail = "current_user_email"
	keyUserRole         = "user_role"
	keyUserFirstName    = "user_first_name"
	keyUserLastName     = "user_last_name"
	keyUserPhone        = "user_phone"
	keyThemeMode        = "theme_mode"
)

// credentialRecord is the JSON blob stored per user in the credential store.
type credentialRecord struct {
	Salt           string `json:"salt"`
	HashedPassword string `json:"hashedPassword"`
	Role           string `json:"role"`
}

// Service provides local email+password authentication over two key-value
// stores. Credential store failures abort the flow; session store
// failures degrade to "not logged in" and are only logged.
type Service struct {
	credentials kvstore.Store
	session     kvstore.Store
	logger      *slog.Logger
}

// NewService creates an auth service over the given credential and
// session stores.
func NewService(credentials, session kvstore.Store) *Service {
	return &Service{
		credentials: credentials,
		session:     session,
		logger:      slog.Default().With("component", "auth"),
	}
}

// NormalizeEmail lowercases and trims an email for use as the canonical
// credential lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a credential record for a new user. The role defaults to
// RoleUser when empty. Returns ErrEmailTaken if a record already exists
// for the normalized email. Display fields (names, phone) are cached in
// the session store best-effort; they are not secrets.
func (s *Service) SignUp(firstName, lastName, email, password, phone, role string) error {
	normalized := NormalizeEmail(email)
	if role == "" {
		role = RoleUser
	}

	key := credentialKeyPrefix + normalized
	if _, ok, err := s.credentials.Read(key); err != nil {
		return fmt.Errorf("checking for existing account: %w", err)
	} else if ok {
		return ErrEmailTaken
	}

	salt, err := generateSalt()
	if err != nil {
		return err
	}

	record := credentialRecord{
		Salt:           salt,
		HashedPassword: hashPassword(password, salt),
		Role:           role,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding credential record: %w", err)
	}

	if err := s.credentials.Write(key, string(raw)); err != nil {
		return fmt.Errorf("persisting credential record: %w", err)
	}

	s.writeSession(keyUserFirstName, firstName)
	s.writeSession(keyUserLastName, lastName)
	s.writeSession(keyUserPhone, phone)

	s.logger.Info("signed up user", "email", normalized, "role", role)
	return nil
}

// SignIn verifies a password against the stored credential record and, on
// success, marks the session as logged in. A missing record, a record
// missing its salt or hash (logged as corruption), and a wrong password
// all return ErrInvalidCredentials. When rememberMe is set the email is
// persisted for pre-fill on next launch; otherwise any previously
// remembered email is cleared.
func (s *Service) SignIn(email, password string, rememberMe bool) error {
	normalized := NormalizeEmail(email)

	raw, ok, err := s.credentials.Read(credentialKeyPrefix + normalized)
	if err != nil {
		return fmt.Errorf("reading credential record: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	var record credentialRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Error("credential record is corrupt", "email", normalized, "error", err)
		return ErrInvalidCredentials
	}
	if record.Salt == "" || record.HashedPassword == "" {
		s.logger.Error("credential record is missing salt or hash", "email", normalized)
		return ErrInvalidCredentials
	}

	if hashPassword(password, record.Salt) != record.HashedPassword {
		return ErrInvalidCredentials
	}

	s.writeSession(keyLoggedIn, "true")
	s.writeSession(keyCurrentUserEmail, normalized)
	s.writeSession(keyUserRole, record.Role)

	if rememberMe {
		s.writeSession(keyRememberMeEmail, normalized)
	} else {
		if err := s.session.Delete(keyRememberMeEmail); err != nil {
			s.logger.Warn("failed to clear remembered email", "error", err)
		}
	}

	s.logger.Info("signed in user", "email", normalized)
	return nil
}

// SignOut clears the logged-in flag and the current user email. The
// remembered email, role, and display-name cache are deliberately left
// behind so the next launch can pre-fill the sign-in screen; use the
// session store's DeleteAll for a full wipe.
func (s *Service) SignOut() {
	s.writeSession(keyLoggedIn, "false")
	if err := s.session.Delete(keyCurrentUserEmail); err != nil {
		s.logger.Warn("failed to clear current user email", "error", err)
	}
	s.logger.Info("signed out")
}

// IsLoggedIn reports whether a session is active. Any read failure reads
// as not logged in.
func (s *Service) IsLoggedIn() bool {
	return s.readSession(keyLoggedIn) == "true"
}

// RememberedEmail returns the email persisted by a remember-me sign-in,
// or empty.
func (s *Service) RememberedEmail() string {
	return s.readSession(keyRememberMeEmail)
}

// CurrentUserEmail returns the email of the signed-in user, or empty.
func (s *Service) CurrentUserEmail() string {
	return s.readSession(keyCurrentUserEmail)
}

// UserFirstName returns the cached first name, or empty.
func (s *Service) UserFirstName() string {
	return s.readSession(keyUserFirstName)
}

// UserLastName returns the cached last name, or empty.
func (s *Service) UserLastName() string {
	return s.readSession(keyUserLastName)
}

// UserPhone returns the cached phone number, or empty.
func (s *Service) UserPhone() string {
	return s.readSession(keyUserPhone)
}

// UserRole returns the cached role of the signed-in user, or empty.
func (s *Service) UserRole() string {
	return s.readSession(keyUserRole)
}

// SetThemeMode persists the display theme preference.
func (s *Service) SetThemeMode(mode string) {
	s.writeSession(keyThemeMode, mode)
}

// ThemeMode returns the persisted display theme preference, or empty.
func (s *Service) ThemeMode() string {
	return s.readSession(keyThemeMode)
}

// writeSession writes a session key best-effort: a failure is logged and
// otherwise ignored, per the degradation contract.
func (s *Service) writeSession(key, value string) {
	if err := s.session.Write(key, value); err != nil {
		s.logger.Warn("failed to persist session state", "key", key, "error", err)
	}
}

// readSession reads a session key, returning empty on absence or failure.
func (s *Service) readSession(key string) string {
	v, ok, err := s.session.Read(key)
	if err != nil {
		s.logger.Warn("failed to read session state", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
