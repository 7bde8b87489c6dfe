package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mdb/pkg/logging"
)

const (
	// DefaultPort is the port of the local callback listener.
	DefaultPort = 3000

	// Path is the route the backend redirects to.
	Path = "/callback"

	// Timeout is how long login waits for the callback.
	Timeout = 10 * time.Minute

	// deliveryGrace bounds how long Wait holds the outcome back for the
	// browser to load the result page.
	deliveryGrace = 5 * time.Second
)

// CookieSink receives the auth_token cookie of the callback request.
type CookieSink interface {
	AcceptCookie(value string)
}

// CookieName is the cookie carrying the token in the cookie variant.
const CookieName = "auth_token"

// Server is a temporary local HTTP server for one OAuth callback. It
// serves /callback once, redirects the browser to / and renders the result
// there, then shuts down.
type Server struct {
	port    int
	handler *Handler
	sink    CookieSink

	ctx      context.Context
	server   *http.Server
	listener net.Listener
	baseURL  string

	once        sync.Once
	deliverOnce sync.Once
	stopOnce    sync.Once

	mu      sync.Mutex
	outcome *Outcome

	resultCh chan Outcome
	errorCh  chan error
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithCookieSink forwards the auth_token cookie of the callback request.
func WithCookieSink(sink CookieSink) ServerOption {
	return func(s *Server) {
		s.sink = sink
	}
}

// NewServer creates a callback server on port (DefaultPort when 0).
func NewServer(port int, handler *Handler, opts ...ServerOption) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:     port,
		handler:  handler,
		resultCh: make(chan Outcome, 1),
		errorCh:  make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on 127.0.0.1 and returns the callback URL. The server
// stops when ctx is cancelled. A negative port picks a free one.
func (s *Server) Start(ctx context.Context) (string, error) {
	port := s.port
	if port < 0 {
		port = 0
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s.ctx = ctx
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port
	s.baseURL = fmt.Sprintf("http://localhost:%d", s.port)

	s.server = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("Callback", "Listening for OAuth callback on %s%s", s.baseURL, Path)
	return s.CallbackURL(), nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Get(Path, s.handleCallback)
	r.Get("/", s.handleHome)
	return r
}

// Wait blocks until the callback was handled and the result page served,
// or ctx ends.
func (s *Server) Wait(ctx context.Context) (Outcome, error) {
	select {
	case outcome := <-s.resultCh:
		return outcome, nil
	case err := <-s.errorCh:
		return Outcome{}, err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// CallbackURL is the URL the backend must redirect to.
func (s *Server) CallbackURL() string {
	return s.baseURL + Path
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback runs exactly once.
func (s *Server) processCallback(w http.ResponseWriter, r *http.Request) {
	if s.sink != nil {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			s.sink.AcceptCookie(c.Value)
		}
	}

	query := r.URL.Query()
	params := Params{
		Token: query.Get("token"),
		Error: query.Get("error"),
	}

	// Bound to the server, not the browser connection.
	outcome := s.handler.Handle(s.ctx, params, &redirectNavigator{w: w, r: r})

	s.mu.Lock()
	s.outcome = &outcome
	s.mu.Unlock()

	// The browser normally loads the result page right away; deliver anyway
	// if it never does.
	time.AfterFunc(deliveryGrace, func() { s.deliver(outcome) })
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	outcome := s.outcome
	s.mu.Unlock()

	page := resultPage(r.URL.Query().Get("error"), outcome)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, page); err != nil {
		logging.Error("Callback", err, "Failed to render result page")
	}

	if outcome != nil {
		s.deliver(*outcome)
	}
}

// deliver hands the outcome to Wait once and schedules the shutdown.
func (s *Server) deliver(outcome Outcome) {
	s.deliverOnce.Do(func() {
		s.resultCh <- outcome

		go func() {
			time.Sleep(1 * time.Second)
			s.Stop()
		}()
	})
}

// redirectNavigator implements the home navigation as an HTTP redirect.
type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n *redirectNavigator) NavigateHome(errorCode string) {
	target := "/"
	if errorCode != "" {
		target += "?" + url.Values{"error": {errorCode}}.Encode()
	}
	http.Redirect(n.w, n.r, target, http.StatusFound)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
