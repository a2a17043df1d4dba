package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// Session is the single persisted record linking a tenant preference to its
// refresh token. It is written whenever a fresh refresh token is obtained
// and deleted on sign-out or definitive refresh failure.
type Session struct {
	TenantID     string `json:"tenant_id"`
	RefreshToken string `json:"refresh_token"`
}

// SessionStore is durable single-slot storage for the session.
type SessionStore interface {
	Save(session Session) error
	Load() (Session, bool, error)
	Delete() error
}

const (
	keyringService = "azvault"
	keyringAccount = "session"
)

// KeyringSessionStore keeps the session in the OS keyring as a JSON blob.
type KeyringSessionStore struct{}

func (KeyringSessionStore) Save(session Session) error {
	if session.RefreshToken == "" {
		return errors.New("refusing to persist session without refresh token")
	}
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return keyring.Set(keyringService, keyringAccount, string(blob))
}

func (KeyringSessionStore) Load() (Session, bool, error) {
	blob, err := keyring.Get(keyringService, keyringAccount)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	var session Session
	if err := json.Unmarshal([]byte(blob), &session); err != nil {
		return Session{}, false, fmt.Errorf("failed to parse stored session: %w", err)
	}
	if session.RefreshToken == "" {
		return Session{}, false, nil
	}
	return session, true, nil
}

func (KeyringSessionStore) Delete() error {
	err := keyring.Delete(keyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileSessionStore keeps the session in a 0600 JSON file, for environments
// without a usable keyring.
type FileSessionStore struct {
	Path string
}

func (s FileSessionStore) Save(session Session) error {
	if session.RefreshToken == "" {
		return errors.New("refusing to persist session without refresh token")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	blob, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(s.Path, blob, 0o600)
}

func (s FileSessionStore) Load() (Session, bool, error) {
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	var session Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return Session{}, false, fmt.Errorf("failed to parse stored session: %w", err)
	}
	if session.RefreshToken == "" {
		return Session{}, false, nil
	}
	return session, true, nil
}

func (s FileSessionStore) Delete() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

const (
	StorageKeyring = "keyring"
	StorageFile    = "file"
)

// NewSessionStore selects a storage backend by mode. An empty mode defaults
// to the keyring.
func NewSessionStore(mode, filePath string) (SessionStore, error) {
	switch mode {
	case "", StorageKeyring:
		return KeyringSessionStore{}, nil
	case StorageFile:
		if filePath == "" {
			return nil, errors.New("file session storage requires a path")
		}
		return FileSessionStore{Path: filePath}, nil
	default:
		return nil, fmt.Errorf("unknown session storage mode: %s", mode)
	}
}
