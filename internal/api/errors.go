package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindOther is any client error not covered below.
	KindOther Kind = iota
	// KindNetwork is a transport failure or timeout; no response was read.
	KindNetwork
	// KindUnauthorized is a 401 or 403.
	KindUnauthorized
	// KindNotFound is a 404.
	KindNotFound
	// KindServerError is any 5xx.
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindServerError:
		return "server error"
	default:
		return "other"
	}
}

// Retryable reports whether a GET failing with this kind is retried.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServerError
}

// ClassifyStatus maps an HTTP status to a Kind. Status 0 means no response.
func ClassifyStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetwork
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServerError
	default:
		return KindOther
	}
}

// ErrorBody is the JSON error document returned by the backend.
type ErrorBody struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Error is returned for every failed backend call.
type Error struct {
	Kind   Kind
	Method string
	Path   string

	// Status is the HTTP status, 0 when no response was received.
	Status int

	// Body is the decoded error document, if the backend sent one.
	Body *ErrorBody

	// Err is the transport error for KindNetwork.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.Body != nil && e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns a message suitable for showing to the user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindNetwork:
		return "Unable to reach the server. Please check your connection."
	case KindUnauthorized:
		return "Authentication failed. Please log in again."
	case KindNotFound:
		return "The requested resource was not found."
	case KindServerError:
		return "The server encountered an error. Please try again later."
	default:
		if e.Body != nil && e.Body.Message != "" {
			return e.Body.Message
		}
		return "An unexpected error occurred."
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err, or KindOther if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}
