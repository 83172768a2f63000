// Package session handles the signed-in user's persisted credentials.
// The session lives in ~/.config/wishly/session.toml: hydrated at startup,
// written on login or registration, and removed on sign-out. There is no
// ambient singleton; callers are handed a Session value explicitly.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/wishly-app/wishly/internal/api"
)

// Session holds the current bearer token and the user it belongs to. The
// zero value is the signed-out state.
type Session struct {
	Token    string `toml:"token"`
	UserID   int64  `toml:"user_id"`
	Email    string `toml:"email"`
	UserName string `toml:"user_name"`
}

const defaultSessionPath = "~/.config/wishly/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// User returns the session's user in API form.
func (s Session) User() api.User {
	return api.User{ID: s.UserID, Email: s.Email, Name: s.UserName}
}

// FromAuth builds a session from a login or registration response.
func FromAuth(auth api.AuthResponse) Session {
	return Session{
		Token:    auth.AccessToken,
		UserID:   auth.User.ID,
		Email:    auth.User.Email,
		UserName: auth.User.Name,
	}
}

// Load reads the session from the given path. A missing or unreadable file
// degrades to the signed-out state rather than failing startup.
func Load(path string) Session {
	resolved, err := resolvePath(path)
	if err != nil {
		return Session{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Session{}
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Session{}
	}

	var sess Session
	if err := toml.Unmarshal(bytes, &sess); err != nil {
		return Session{}
	}
	return sess
}

// Save writes the session, creating the config directory if needed. The
// file holds a bearer token, so permissions are owner-only.
func Save(path string, sess Session) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	bytes, err := toml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. A session that was never saved is
// not an error.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultSessionPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
