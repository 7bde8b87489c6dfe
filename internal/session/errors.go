package session

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when authorized headers are requested without a token.
var ErrNoToken = errors.New("no authentication token available")

// errEmptyProfile marks a successful /me response without a user in it.
var errEmptyProfile = errors.New("empty user profile in response")

// InvalidProviderError is returned by Login for providers other than google
// and github.
type InvalidProviderError struct {
	Provider string
}

func (e *InvalidProviderError) Error() string {
	return fmt.Sprintf("invalid OAuth provider %q (supported: google, github)", e.Provider)
}

// IsInvalidProvider checks if an error is an InvalidProviderError.
func IsInvalidProvider(err error) bool {
	var target *InvalidProviderError
	return errors.As(err, &target)
}
