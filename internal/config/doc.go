// Package config provides configuration management for mdb.
//
// Configuration is read from config.yaml in a single directory, by default
// ~/.config/mdb. A missing file is not an error: every field has a default.
//
// # Configuration File
//
//	backendURL: http://localhost:8080
//	tokenStore: file          # memory | file | cookie
//	tokenDir: ~/.config/mdb/tokens
//	cookieFile: ~/cookies.txt # Netscape format, cookie store only
//	callbackPort: 3000
//	authTimeout: 10s
//	forumTimeout: 15s
//	logLevel: warn
//
// # Environment
//
// MDB_BACKEND_URL and MDB_TOKEN_STORE override the file. The result is
// validated after overrides are applied; problems are reported as a
// ConfigurationError listing every invalid field.
package config
