package cli

import (
	"io"
	"net/http"
	"os"

	"mdb/internal/api"
	"mdb/internal/browser"
	"mdb/internal/config"
	"mdb/internal/forum"
	"mdb/internal/session"
	"mdb/internal/tokenstore"
	"mdb/pkg/logging"
)

// Runtime is everything a command needs to talk to the backend. It is built
// once per invocation.
type Runtime struct {
	Config  config.Config
	Store   tokenstore.Store
	Session *session.Service
	Forum   *forum.Service
}

// RuntimeOption customises NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	httpClient *http.Client
	navigator  session.Navigator
	logOutput  io.Writer
}

// WithRuntimeHTTPClient sets the HTTP client for all backend calls.
func WithRuntimeHTTPClient(c *http.Client) RuntimeOption {
	return func(o *runtimeOptions) {
		o.httpClient = c
	}
}

// WithRuntimeNavigator replaces the browser launcher used by login.
func WithRuntimeNavigator(n session.Navigator) RuntimeOption {
	return func(o *runtimeOptions) {
		o.navigator = n
	}
}

// WithLogOutput redirects log output, stderr by default.
func WithLogOutput(w io.Writer) RuntimeOption {
	return func(o *runtimeOptions) {
		o.logOutput = w
	}
}

// NewRuntime loads the configuration, initializes logging and wires the
// token store, session and forum service.
func NewRuntime(flags CommandFlags, opts ...RuntimeOption) (*Runtime, error) {
	o := runtimeOptions{
		httpClient: http.DefaultClient,
		logOutput:  os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.navigator == nil {
		o.navigator = &browser.Navigator{Out: os.Stderr}
	}

	configPath := flags.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if flags.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, o.logOutput)

	store, err := tokenstore.New(cfg.TokenStoreConfig())
	if err != nil {
		return nil, err
	}
	logging.Debug("CLI", "Using %s token store for %s", store.Kind(), cfg.BackendURL)

	sess := session.New(store, cfg.BackendURL,
		session.WithHTTPClient(o.httpClient),
		session.WithTimeout(cfg.AuthTimeout),
		session.WithNavigator(o.navigator),
	)

	client := api.NewClient(cfg.BackendURL,
		api.WithHTTPClient(o.httpClient),
		api.WithTimeout(cfg.ForumTimeout),
		api.WithHeaderSource(sess),
		api.WithInvalidator(sess),
	)

	return &Runtime{
		Config:  cfg,
		Store:   store,
		Session: sess,
		Forum:   forum.NewService(client),
	}, nil
}

// CookieSink returns the store as a callback cookie sink when the cookie
// backing is active.
func (r *Runtime) CookieSink() (*tokenstore.CookieStore, bool) {
	cs, ok := r.Store.(*tokenstore.CookieStore)
	return cs, ok
}
