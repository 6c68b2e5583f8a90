package todoist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

const (
	keyringService = "MCPTodoist"
	keyringUser    = "TodoistAPIToken"
)

// TokenData is the persisted form of the Todoist API token.
type TokenData struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenStorage persists the Todoist API token between runs.
type TokenStorage interface {
	// LoadToken returns the stored token, or empty string when none exists.
	LoadToken() (string, error)
	// SaveToken persists the token.
	SaveToken(token string) error
	// DeleteToken removes the stored token. Deleting a missing token is not an error.
	DeleteToken() error
}

// SecureTokenStorage stores the token in the OS keyring.
type SecureTokenStorage struct {
	logger logging.Logger
}

var _ TokenStorage = (*SecureTokenStorage)(nil)

// NewSecureTokenStorage creates a keyring-backed token storage.
func NewSecureTokenStorage(logger logging.Logger) *SecureTokenStorage {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &SecureTokenStorage{logger: logger.WithField("component", "secure_token_storage")}
}

// IsAvailable checks whether the OS keyring service is accessible.
func (s *SecureTokenStorage) IsAvailable() bool {
	_, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return true
		}
		s.logger.Warn("Keyring service is inaccessible.", "error", err)
		return false
	}
	return true
}

// LoadToken loads the token from the OS keyring. A missing entry yields an
// empty token, not an error.
func (s *SecureTokenStorage) LoadToken() (string, error) {
	jsonData, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("No API token found in system keyring.")
			return "", nil
		}
		return "", errors.Wrap(err, "failed to load token from system keyring")
	}

	var data TokenData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		s.logger.Error("Token data in keyring is corrupted, deleting the entry.", "error", err)
		_ = s.DeleteToken()
		return "", errors.Wrap(err, "failed to parse token data from secure storage")
	}
	return data.Token, nil
}

// SaveToken stores the token in the OS keyring.
func (s *SecureTokenStorage) SaveToken(token string) error {
	if token == "" {
		return errors.New("cannot save empty token to keyring")
	}
	data := TokenData{Token: token, SavedAt: time.Now().UTC()}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode token data")
	}
	if err := keyring.Set(keyringService, keyringUser, string(jsonData)); err != nil {
		return errors.Wrap(err, "failed to save token to system keyring")
	}
	s.logger.Info("Saved API token to system keyring.")
	return nil
}

// DeleteToken removes the token from the OS keyring.
func (s *SecureTokenStorage) DeleteToken() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "failed to delete token from system keyring")
	}
	return nil
}

// FileTokenStorage stores the token in a JSON file with restrictive
// permissions. It is the fallback when no keyring is available, typical for
// headless hosts.
type FileTokenStorage struct {
	path   string
	logger logging.Logger
}

var _ TokenStorage = (*FileTokenStorage)(nil)

// NewFileTokenStorage creates a file-backed token storage at the given path.
func NewFileTokenStorage(path string, logger logging.Logger) *FileTokenStorage {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &FileTokenStorage{path: path, logger: logger.WithField("component", "file_token_storage")}
}

// LoadToken reads the token file. A missing file yields an empty token.
func (s *FileTokenStorage) LoadToken() (string, error) {
	jsonData, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to read token file %s", s.path)
	}
	var data TokenData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return "", errors.Wrapf(err, "failed to parse token file %s", s.path)
	}
	return data.Token, nil
}

// SaveToken writes the token file, creating parent directories as needed.
func (s *FileTokenStorage) SaveToken(token string) error {
	if token == "" {
		return errors.New("cannot save empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create token directory")
	}
	data := TokenData{Token: token, SavedAt: time.Now().UTC()}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode token data")
	}
	if err := os.WriteFile(s.path, jsonData, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write token file %s", s.path)
	}
	s.logger.Info("Saved API token to file.", "path", s.path)
	return nil
}

// DeleteToken removes the token file.
func (s *FileTokenStorage) DeleteToken() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete token file %s", s.path)
	}
	return nil
}

// NewTokenStorage returns keyring-backed storage when the OS keyring is
// available, falling back to file storage at fallbackPath otherwise.
func NewTokenStorage(fallbackPath string, logger logging.Logger) TokenStorage {
	secure := NewSecureTokenStorage(logger)
	if secure.IsAvailable() {
		return secure
	}
	if logger != nil {
		logger.Info("System keyring unavailable, using file token storage.", "path", fallbackPath)
	}
	return NewFileTokenStorage(fallbackPath, logger)
}
