package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"mdb/internal/api"
	"mdb/internal/tokenstore"
	"mdb/pkg/logging"
	"mdb/pkg/models"
)

const (
	// DefaultTimeout bounds each call to the auth endpoints.
	DefaultTimeout = 10 * time.Second

	// MePath returns the profile of the token's owner.
	MePath = "/api/auth/me"

	// LogoutPath tells the backend the token is no longer used.
	LogoutPath = "/api/auth/logout"

	// AuthorizationPathPrefix is followed by the provider name.
	AuthorizationPathPrefix = "/oauth2/authorization/"
)

// Logout result messages.
const (
	MessageLoggedOut        = "Logged out successfully"
	MessageLoggedOutLocally = "Logged out locally"
)

// Navigator sends the user to an external URL.
type Navigator interface {
	Navigate(url string) error
}

// InvalidationFunc is run when the backend rejects the current token.
type InvalidationFunc func(ctx context.Context, cause error)

// LogoutResult is delivered once per Logout call.
type LogoutResult struct {
	Message string

	// ServerNotified is true when the backend acknowledged the logout.
	ServerNotified bool
}

// Service is the session of one process. It is safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	store tokenstore.Store
	state State
	user  *models.User

	client     *api.Client
	backendURL string
	navigator  Navigator
	onInvalid  InvalidationFunc

	userGroup singleflight.Group
}

// Option configures the Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	navigator  Navigator
	onInvalid  InvalidationFunc
}

// WithHTTPClient sets the HTTP client used for the auth endpoints.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *serviceOptions) {
		o.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the auth endpoints.
func WithTimeout(timeout time.Duration) Option {
	return func(o *serviceOptions) {
		o.timeout = timeout
	}
}

// WithNavigator sets how Login sends the user to the provider.
func WithNavigator(navigator Navigator) Option {
	return func(o *serviceOptions) {
		o.navigator = navigator
	}
}

// WithInvalidation replaces the reaction to a rejected token. The default
// logs the user out.
func WithInvalidation(fn InvalidationFunc) Option {
	return func(o *serviceOptions) {
		o.onInvalid = fn
	}
}

// New creates the session for the backend at backendURL. The store is the
// single token backing for the process.
func New(store tokenstore.Store, backendURL string, opts ...Option) *Service {
	o := serviceOptions{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := api.NewClient(backendURL,
		api.WithHTTPClient(o.httpClient),
		api.WithTimeout(o.timeout),
	)

	s := &Service{
		store:      store,
		state:      StateUnauthenticated,
		client:     client,
		backendURL: client.BaseURL(),
		navigator:  o.navigator,
		onInvalid:  o.onInvalid,
	}
	if s.onInvalid == nil {
		s.onInvalid = func(ctx context.Context, _ error) {
			s.Logout(ctx)
		}
	}
	return s
}

// IsAuthenticated reports whether a non-empty token is held. It does not
// verify the token with the backend.
func (s *Service) IsAuthenticated() bool {
	_, ok := s.store.Get()
	return ok
}

// State returns the current state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the cached user, or nil.
func (s *Service) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// StoreKind reports the active token backing.
func (s *Service) StoreKind() tokenstore.Kind {
	return s.store.Kind()
}

// BackendURL returns the backend this session authenticates against.
func (s *Service) BackendURL() string {
	return s.backendURL
}

// AuthorizedHeaders returns the headers for an authorized request, or
// ErrNoToken.
func (s *Service) AuthorizedHeaders() (http.Header, error) {
	token, ok := s.store.Get()
	if !ok {
		return nil, ErrNoToken
	}
	return bearerHeader(token), nil
}

// CurrentUser fetches the profile of the token's owner. It returns nil
// without a network call when no token is held, and nil on any failure. A
// rejected token triggers the invalidation callback; other failures leave
// the session untouched. Overlapping calls share one request.
func (s *Service) CurrentUser(ctx context.Context) *models.User {
	token, ok := s.store.Get()
	if !ok {
		s.mu.Lock()
		s.user = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return nil
	}

	// Keyed by token so a fetch for a replaced token is never shared. The
	// shared fetch outlives a cancelled first caller; the client timeout
	// still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := s.userGroup.Do(token, func() (interface{}, error) {
		return s.fetchUser(fetchCtx, token), nil
	})

	user, _ := v.(*models.User)
	return copyUser(user)
}

func (s *Service) fetchUser(ctx context.Context, token string) *models.User {
	s.mu.Lock()
	if s.holdsLocked(token) {
		s.state = StateAuthenticating
	}
	s.mu.Unlock()

	var user *models.User
	err := s.client.Get(ctx, MePath, nil, &user, api.Options{Header: bearerHeader(token)})
	if err == nil && !isProfile(user) {
		err = &api.Error{Kind: api.KindOther, Method: http.MethodGet, Path: MePath, Status: http.StatusOK, Err: errEmptyProfile}
	}
	if err != nil {
		switch api.KindOf(err) {
		case api.KindUnauthorized:
			logging.Warn("Session", "Authentication failed, logging out user")
		case api.KindNetwork:
			logging.Error("Session", err, "Network error - server may be unavailable")
		default:
			logging.Error("Session", err, "Unexpected error fetching current user")
		}

		s.mu.Lock()
		if s.holdsLocked(token) {
			s.state = stateFor(s.user)
		}
		s.mu.Unlock()

		if api.IsKind(err, api.KindUnauthorized) {
			s.invalidate(ctx, token, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The token changed while the request was in flight.
	if !s.holdsLocked(token) {
		return nil
	}
	s.user = user
	s.state = StateAuthenticated

	logging.Debug("Session", "Fetched current user %s (provider=%s)", user.Username, user.Provider)
	return user
}

// isProfile rejects the empty or null body some proxies answer with.
func isProfile(u *models.User) bool {
	return u != nil && (u.ID != 0 || u.Username != "")
}

// Login sends the user to the authorization endpoint of provider. Only
// google and github are accepted; anything else is logged and returns an
// InvalidProviderError without navigating.
func (s *Service) Login(provider string) error {
	authURL, err := s.AuthorizationURL(provider)
	if err != nil {
		logging.Error("Session", err, "Refusing to start login")
		return err
	}
	if s.navigator == nil {
		return fmt.Errorf("no navigator configured to open %s", authURL)
	}

	logging.Info("Session", "Redirecting to %s", authURL)
	if err := s.navigator.Navigate(authURL); err != nil {
		logging.Error("Session", err, "Error redirecting to OAuth provider")
		return fmt.Errorf("failed to open authorization URL: %w", err)
	}
	return nil
}

// AuthorizationURL returns the login redirect target for provider.
func (s *Service) AuthorizationURL(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle, models.ProviderGitHub:
		return s.backendURL + AuthorizationPathPrefix + url.PathEscape(provider), nil
	default:
		return "", &InvalidProviderError{Provider: provider}
	}
}

// Logout clears the token and cached user before returning. If a token was
// held, the backend is notified in the background; a failed notification
// only changes the message. The channel yields exactly one result.
func (s *Service) Logout(ctx context.Context) <-chan LogoutResult {
	s.mu.Lock()
	token, had := s.store.Get()
	s.store.Clear()
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	result := make(chan LogoutResult, 1)
	if !had {
		result <- LogoutResult{Message: MessageLoggedOut}
		close(result)
		return result
	}

	logging.Audit("session_logout", "Session logged out", "store", string(s.store.Kind()))

	go func() {
		defer close(result)

		var resp struct {
			Message string `json:"message"`
		}
		err := s.client.Post(ctx, LogoutPath, struct{}{}, &resp, api.Options{Header: bearerHeader(token)})
		if err != nil {
			logging.Warn("Session", "Error during server logout: %v", err)
			result <- LogoutResult{Message: MessageLoggedOutLocally}
			return
		}

		msg := resp.Message
		if msg == "" {
			msg = MessageLoggedOut
		}
		result <- LogoutResult{Message: msg, ServerNotified: true}
	}()

	return result
}

// InstallToken stores a token received by the OAuth callback. A different
// token drops the cached user.
func (s *Service) InstallToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := s.store.Get()
	if err := s.store.Set(token); err != nil {
		return err
	}
	if current != token {
		s.user = nil
		s.state = StateUnauthenticated
	}

	logging.Debug("Session", "Installed token %s", tokenstore.Redact(token))
	return nil
}

// HandleAuthCallback completes a login whose token was delivered out of
// band: the backing store is re-read and the user fetched. received is
// false when the store still holds no token. If the fetch fails while the
// token is still held, the session is logged out.
func (s *Service) HandleAuthCallback(ctx context.Context) (user *models.User, received bool) {
	if r, ok := s.store.(tokenstore.Reloader); ok {
		if err := r.Reload(); err != nil {
			logging.Warn("Session", "Failed to reload token store: %v", err)
		}
	}

	token, had := s.store.Get()
	if !had {
		logging.Error("Session", nil, "No token found after auth callback")
		s.mu.Lock()
		s.user = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return nil, false
	}

	user = s.CurrentUser(ctx)
	if user != nil {
		logging.Info("Session", "User authenticated successfully: %s", user.Email)
		return user, true
	}

	s.mu.Lock()
	stillHeld := s.holdsLocked(token)
	s.mu.Unlock()
	if stillHeld {
		logging.Warn("Session", "Failed to fetch user after auth callback, logging out")
		s.Logout(ctx)
	}
	return nil, true
}

// Hydrate restores the session at startup: if the store already holds a
// token, the current user is fetched.
func (s *Service) Hydrate(ctx context.Context) *models.User {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.CurrentUser(ctx)
}

// Invalidate reports that the backend rejected the current token. It is
// the api.Invalidator of clients sending authorized requests.
func (s *Service) Invalidate(ctx context.Context, cause error) {
	token, ok := s.store.Get()
	if !ok {
		return
	}
	s.invalidate(ctx, token, cause)
}

func (s *Service) invalidate(ctx context.Context, token string, cause error) {
	s.mu.Lock()
	stale := !s.holdsLocked(token)
	s.mu.Unlock()
	if stale {
		return
	}

	logging.Audit("session_invalidated", "Session invalidated after rejected token",
		"store", string(s.store.Kind()),
		"cause", cause.Error(),
	)
	s.onInvalid(ctx, cause)
}

// holdsLocked reports whether token is still the stored token.
// REQUIRES: s.mu must be held.
func (s *Service) holdsLocked(token string) bool {
	current, ok := s.store.Get()
	return ok && current == token
}

func stateFor(user *models.User) State {
	if user != nil {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

func bearerHeader(token string) http.Header {
	req := &http.Request{Header: http.Header{}}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	return req.Header
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append(models.Roles(nil), u.Roles...)
	if u.AvatarURL != nil {
		avatar := *u.AvatarURL
		c.AvatarURL = &avatar
	}
	return &c
}
