// Package callback completes the OAuth login: the backend redirects the
// browser to a short-lived local listener, which installs the token and
// sends the browser to a result page.
package callback

import (
	"context"
	"strings"

	"mdb/pkg/logging"
	"mdb/pkg/models"
)

// Error codes attached to the home navigation.
const (
	ErrorAuthFailed = "auth_failed"
	ErrorNoToken    = "no_token"
)

// Session is the part of the session service the callback drives.
type Session interface {
	InstallToken(token string) error
	CurrentUser(ctx context.Context) *models.User
	HandleAuthCallback(ctx context.Context) (user *models.User, received bool)
}

// Navigator leaves the callback route. errorCode is empty on success.
type Navigator interface {
	NavigateHome(errorCode string)
}

// Params are the query parameters of the callback route.
type Params struct {
	Token string
	Error string
}

// Outcome describes how a callback was handled.
type Outcome struct {
	// User is the verified user, nil if the profile fetch failed.
	User *models.User

	// ErrorCode is ErrorAuthFailed or ErrorNoToken, empty on success.
	ErrorCode string

	// ProviderError is the error reported by the backend, if any.
	ProviderError string
}

// Succeeded reports whether a token was accepted.
func (o Outcome) Succeeded() bool {
	return o.ErrorCode == ""
}

// Handler decides what a callback means for the session.
type Handler struct {
	session    Session
	cookieMode bool
}

// NewHandler creates a handler. cookieMode is set when the token arrives as
// a cookie rather than in the query string.
func NewHandler(session Session, cookieMode bool) *Handler {
	return &Handler{session: session, cookieMode: cookieMode}
}

// Handle processes one callback and always navigates home exactly once.
func (h *Handler) Handle(ctx context.Context, params Params, nav Navigator) Outcome {
	if params.Error != "" {
		logging.Error("Callback", nil, "Authentication error: %s", params.Error)
		return h.home(nav, Outcome{ErrorCode: ErrorAuthFailed, ProviderError: params.Error})
	}

	if strings.TrimSpace(params.Token) != "" {
		if err := h.session.InstallToken(params.Token); err != nil {
			logging.Error("Callback", err, "Failed to install token")
			return h.home(nav, Outcome{ErrorCode: ErrorAuthFailed})
		}
		// Home either way: a failed profile fetch already left the session
		// in the right state.
		return h.home(nav, Outcome{User: h.session.CurrentUser(ctx)})
	}

	if h.cookieMode {
		user, received := h.session.HandleAuthCallback(ctx)
		if received {
			return h.home(nav, Outcome{User: user})
		}
	}

	logging.Error("Callback", nil, "No token received in callback")
	return h.home(nav, Outcome{ErrorCode: ErrorNoToken})
}

func (h *Handler) home(nav Navigator, outcome Outcome) Outcome {
	nav.NavigateHome(outcome.ErrorCode)
	return outcome
}
