// Package cli holds the pieces shared by the mdb commands: flag handling,
// output formatting, interactive prompts, the typed errors that decide the
// process exit code, and the Runtime that wires configuration, token store,
// session and forum service together.
package cli
