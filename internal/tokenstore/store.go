package tokenstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidToken is returned by Set for empty or whitespace-only tokens.
var ErrInvalidToken = errors.New("invalid token: must not be empty")

// Kind names a Store backing.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindCookie Kind = "cookie"
)

// ParseKind validates a configured backing name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMemory:
		return KindMemory, nil
	case KindFile:
		return KindFile, nil
	case KindCookie:
		return KindCookie, nil
	default:
		return "", fmt.Errorf("unknown token store %q (expected memory, file or cookie)", s)
	}
}

// Store holds at most one bearer token.
type Store interface {
	// Get returns the current token and whether one is present.
	Get() (string, bool)

	// Set replaces the current token. It returns ErrInvalidToken (and keeps
	// the previous state) when token is empty or whitespace only.
	Set(token string) error

	// Clear removes the token. Persistence failures are logged, the
	// in-memory state is always cleared.
	Clear()

	// Kind reports which backing is active.
	Kind() Kind
}

// Reloader is implemented by backings whose token can change outside the
// process (the token file, the exported cookie file). Reload discards the
// cached value and reads the source again.
type Reloader interface {
	Reload() error
}

// Config selects and configures the single active backing.
type Config struct {
	// Kind is the backing to use.
	Kind Kind

	// BackendURL identifies the backend the token belongs to. The file
	// backing derives its file name from it; the cookie backing uses its
	// host to match cookie domains.
	BackendURL string

	// Dir is the directory of the file backing.
	Dir string

	// CookieFile is an optional Netscape-format cookie file for the cookie
	// backing.
	CookieFile string
}

// New returns the Store selected by cfg.Kind.
func New(cfg Config) (Store, error) {
	switch cfg.Kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		return NewFileStore(cfg.Dir, cfg.BackendURL)
	case KindCookie:
		return NewCookieStore(cfg.BackendURL, cfg.CookieFile)
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Kind)
	}
}

// validate enforces the Set contract shared by every backing.
func validate(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	return nil
}
