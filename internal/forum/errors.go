package forum

import (
	"errors"

	"mdb/internal/api"
	"mdb/internal/session"
)

// ValidationError reports input rejected before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ActionError is a failed forum operation. Message is meant for the user.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

const messageLoginRequired = "You must be logged in to do this. Run 'mdb auth login' first."

// newActionError picks the user message for err. Server errors get the
// operation's fallback, the rest follow the api classification.
func newActionError(fallback string, err error) *ActionError {
	if errors.Is(err, session.ErrNoToken) {
		return &ActionError{Message: messageLoginRequired, Err: err}
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &ActionError{Message: fallback, Err: err}
	}

	switch apiErr.Kind {
	case api.KindNetwork, api.KindUnauthorized, api.KindNotFound:
		return &ActionError{Message: apiErr.UserMessage(), Err: err}
	case api.KindOther:
		if apiErr.Body != nil && apiErr.Body.Message != "" {
			return &ActionError{Message: apiErr.Body.Message, Err: err}
		}
	}
	return &ActionError{Message: fallback, Err: err}
}
