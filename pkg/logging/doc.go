// Package logging provides the structured logger used across mdb.
//
// It wraps Go's standard slog package with a small subsystem-oriented API so
// every log line carries the component that produced it.
//
// # Usage
//
//	// Initialize with Warn level logging to stderr
//	logging.InitForCLI(logging.LevelWarn, os.Stderr)
//
//	logging.Info("Session", "Fetched current user %s", user.Username)
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Error("API", err, "Request to %s failed", path)
//
// # Subsystems
//
//   - **TokenStore**: token set/clear and backing persistence
//   - **Session**: hydration, current user fetches, login and logout
//   - **API**: outbound HTTP calls and failure classification
//   - **Callback**: the local OAuth callback listener
//   - **Forum**: forum reads and writes
//   - **Config**: configuration loading
//
// # Audit Logging
//
// Credential lifecycle events are written with Audit. They are logged at INFO
// level with a "SECURITY_AUDIT:" prefix and an event attribute. Token values
// must never be passed as attributes.
//
//	logging.Audit("token_stored", "Bearer token stored", "store", "file")
package logging
