package config

import (
	"time"

	"mdb/internal/tokenstore"
)

// Config is the mdb configuration.
type Config struct {
	// BackendURL is the base URL of the MDB backend.
	BackendURL string `yaml:"backendURL"`

	// TokenStore selects the token backing: memory, file or cookie.
	TokenStore string `yaml:"tokenStore"`

	// TokenDir is the directory of the file backing.
	TokenDir string `yaml:"tokenDir,omitempty"`

	// CookieFile is a Netscape cookie file read by the cookie backing.
	CookieFile string `yaml:"cookieFile,omitempty"`

	// CallbackPort is the local port the OAuth callback is served on. It
	// must match the redirect configured on the backend.
	CallbackPort int `yaml:"callbackPort"`

	AuthTimeout  time.Duration `yaml:"authTimeout"`
	ForumTimeout time.Duration `yaml:"forumTimeout"`

	LogLevel string `yaml:"logLevel,omitempty"`
}

// TokenStoreConfig returns the tokenstore configuration. The config must
// have been validated.
func (c Config) TokenStoreConfig() tokenstore.Config {
	kind, _ := tokenstore.ParseKind(c.TokenStore)
	return tokenstore.Config{
		Kind:       kind,
		BackendURL: c.BackendURL,
		Dir:        c.TokenDir,
		CookieFile: c.CookieFile,
	}
}
