package auth

import "mdb/pkg/models"

// State is the outcome of checking the stored token against the backend.
type State string

const (
	// StateAuthenticated means the backend accepted the token.
	StateAuthenticated State = "authenticated"
	// StateNotAuthenticated means no token is stored.
	StateNotAuthenticated State = "not_authenticated"
	// StateRejected means the backend rejected the token and it was removed.
	StateRejected State = "token_rejected"
	// StateUnverified means a token is stored but the backend could not
	// confirm it (unreachable, server error).
	StateUnverified State = "unverified"
)

// Status is the structured authentication state.
type Status struct {
	// Backend is the base URL of the MDB backend.
	Backend string `json:"backend" yaml:"backend"`

	// TokenStore is the active token backing: memory, file or cookie.
	TokenStore string `json:"tokenStore" yaml:"tokenStore"`

	// HasToken reports whether a token was stored before the check.
	HasToken bool `json:"hasToken" yaml:"hasToken"`

	State State `json:"state" yaml:"state"`

	// User is present when State is StateAuthenticated.
	User *models.User `json:"user,omitempty" yaml:"user,omitempty"`
}

// Resolve derives the state from a check: hadToken is whether a token was
// stored beforehand, user the verified profile (nil on failure) and
// stillHeld whether the token survived the check.
func Resolve(hadToken bool, user *models.User, stillHeld bool) State {
	switch {
	case !hadToken:
		return StateNotAuthenticated
	case user != nil:
		return StateAuthenticated
	case !stillHeld:
		return StateRejected
	default:
		return StateUnverified
	}
}

// NeedsLogin reports whether the user has to run a login to get a working
// session.
func (s State) NeedsLogin() bool {
	return s == StateNotAuthenticated || s == StateRejected
}
