package tokenstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mdb/pkg/logging"
)

// DefaultTokenStorageDir is the default directory, relative to the user's
// home, for the file backing.
const DefaultTokenStorageDir = ".config/mdb/tokens"

// storedToken is the on-disk representation of a token file.
type storedToken struct {
	// Token is the opaque bearer credential.
	Token string `json:"token"`

	// BackendURL is the backend this token authenticates to.
	BackendURL string `json:"backend_url"`

	// CreatedAt is when the token was stored.
	CreatedAt time.Time `json:"created_at"`
}

// FileStore persists the token to a JSON file so it survives restarts.
//
// SECURITY: This store handles sensitive credentials. The following measures
// are implemented:
//   - Files are created with 0600 permissions (owner read/write only)
//   - The storage directory is created with 0700 permissions (owner only)
//   - Token values are NEVER logged (only the backend URL)
type FileStore struct {
	mu         sync.RWMutex
	storageDir string
	backendURL string
	token      string
	loaded     bool
}

// NewFileStore creates a file-backed store for backendURL under storageDir.
// An empty storageDir resolves to ~/.config/mdb/tokens.
func NewFileStore(storageDir, backendURL string) (*FileStore, error) {
	if storageDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(homeDir, DefaultTokenStorageDir)
	}

	if err := os.MkdirAll(storageDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}

	return &FileStore{
		storageDir: storageDir,
		backendURL: backendURL,
	}, nil
}

// Get returns the token, reading the file on first use.
func (s *FileStore) Get() (string, bool) {
	// Fast path with read lock
	s.mu.RLock()
	if s.loaded {
		token := s.token
		s.mu.RUnlock()
		return token, token != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check in case another goroutine loaded it
	if !s.loaded {
		s.loadLocked()
	}
	return s.token, s.token != ""
}

// Set writes the token file and updates the cached value.
// SECURITY: Token values are never logged.
func (s *FileStore) Set(token string) error {
	if err := validate(token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &storedToken{
		Token:      token,
		BackendURL: s.backendURL,
		CreatedAt:  time.Now(),
	}
	if err := s.writeTokenFile(stored); err != nil {
		logging.Audit("token_store_failed", "Bearer token storage failed",
			"store", string(KindFile),
			"backend_url", s.backendURL,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.token = token
	s.loaded = true

	logging.Audit("token_stored", "Bearer token stored",
		"store", string(KindFile),
		"backend_url", s.backendURL,
	)
	return nil
}

// Clear forgets the cached token and removes the token file.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.loaded = true

	if err := s.deleteTokenFile(); err != nil {
		logging.Audit("token_delete_failed", "Bearer token file deletion failed",
			"store", string(KindFile),
			"backend_url", s.backendURL,
			"error", err.Error(),
		)
		return
	}

	logging.Audit("token_cleared", "Bearer token cleared",
		"store", string(KindFile),
		"backend_url", s.backendURL,
	)
}

// Reload discards the cached token and reads the file again. Another mdb
// process may have logged in or out since the file was first read.
func (s *FileStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.token = ""
	s.loadLocked()
	return nil
}

func (s *FileStore) Kind() Kind {
	return KindFile
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.storageDir, s.tokenKey()+".json")
}

// loadLocked reads the token file into the cache.
// REQUIRES: s.mu must be held (write lock) by the caller.
func (s *FileStore) loadLocked() {
	s.loaded = true

	stored, err := s.readTokenFile()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("TokenStore", "Ignoring unreadable token file %s: %v", s.Path(), err)
		}
		return
	}

	// A file with a blank token is treated as absent rather than as a token.
	if validate(stored.Token) != nil {
		return
	}
	s.token = stored.Token
}

// tokenKey derives a filesystem-safe identifier from the backend URL.
func (s *FileStore) tokenKey() string {
	hash := sha256.Sum256([]byte(s.backendURL))
	return hex.EncodeToString(hash[:16])
}

func (s *FileStore) writeTokenFile(token *storedToken) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileStore) readTokenFile() (*storedToken, error) {
	// #nosec G304 -- path is derived from a hash, not user input
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, err
	}

	var token storedToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

func (s *FileStore) deleteTokenFile() error {
	err := os.Remove(s.Path())
	if os.IsNotExist(err) {
		return nil // Already deleted
	}
	return err
}
