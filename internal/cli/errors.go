package cli

import (
	"errors"
	"fmt"

	"mdb/internal/api"
	"mdb/internal/session"
)

// AuthRequiredError indicates authentication is needed.
// Implements error with actionable guidance.
type AuthRequiredError struct {
	// Backend is the URL that requires authentication.
	Backend string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Authentication required for %s

To authenticate, run:
  mdb auth login --provider github

To check current authentication status:
  mdb auth status`, e.Backend)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthFailedError indicates the login flow or a credential check failed.
type AuthFailedError struct {
	// Backend is the URL where authentication failed.
	Backend string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed for %s: %v

To retry authentication, run:
  mdb auth login --provider github`, e.Backend, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// WrapAuthError maps the credential failures of a backend call to the
// typed CLI errors; other errors are returned unchanged.
func WrapAuthError(backend string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNoToken):
		return &AuthRequiredError{Backend: backend}
	case api.IsKind(err, api.KindUnauthorized):
		return &AuthFailedError{Backend: backend, Reason: err}
	default:
		return err
	}
}
