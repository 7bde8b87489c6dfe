package session

// State is the authentication state of a Service.
type State int

const (
	// StateUnauthenticated means no user is cached.
	StateUnauthenticated State = iota

	// StateAuthenticating means a profile fetch is in flight.
	StateAuthenticating

	// StateAuthenticated means the current user is cached.
	StateAuthenticated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}
