package config

import (
	"time"

	"mdb/internal/tokenstore"
)

const (
	DefaultBackendURL   = "http://localhost:8080"
	DefaultCallbackPort = 3000
	DefaultAuthTimeout  = 10 * time.Second
	DefaultForumTimeout = 15 * time.Second
	DefaultLogLevel     = "warn"
)

// GetDefaultConfig returns the configuration used when no file exists.
func GetDefaultConfig() Config {
	return Config{
		BackendURL:   DefaultBackendURL,
		TokenStore:   string(tokenstore.KindFile),
		CallbackPort: DefaultCallbackPort,
		AuthTimeout:  DefaultAuthTimeout,
		ForumTimeout: DefaultForumTimeout,
		LogLevel:     DefaultLogLevel,
	}
}
