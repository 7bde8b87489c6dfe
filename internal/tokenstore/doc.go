// Package tokenstore holds the bearer token of the current session.
//
// A Store exposes Get, Set and Clear over exactly one backing, selected once
// per deployment through configuration:
//
//   - memory: the token lives in process memory only and is lost on exit.
//     Most secure; every new process must authenticate again.
//   - file: the token is persisted to a per-user JSON file (0600 inside a
//     0700 directory). Survives restarts, but any process running as the same
//     user can read it.
//   - cookie: the auth_token cookie set by the backend during the OAuth
//     redirect is read once (from an exported cookie file or from the
//     callback request) and then kept in memory for the rest of the process.
//
// The backings are never combined. Set rejects empty and whitespace-only
// tokens with ErrInvalidToken and leaves the store unchanged.
//
// SECURITY: token values are never logged. Set and Clear emit
// SECURITY_AUDIT records that carry only the store kind and backend URL.
package tokenstore
