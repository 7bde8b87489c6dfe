package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mdb/internal/cli"
	"mdb/internal/config"
	"mdb/internal/tokenstore"

	"github.com/stretchr/testify/require"
)

const testToken = "tok-alice"

// fakeForum is an in-process MDB backend.
type fakeForum struct {
	server *httptest.Server

	mu        sync.Mutex
	calls     map[string]int
	bodies    map[string]string
	auth      map[string]string
	rejectAll bool
}

func newFakeForum(t *testing.T) *fakeForum {
	t.Helper()
	f := &fakeForum{
		calls:  map[string]int{},
		bodies: map[string]string{},
		auth:   map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "username": "alice", "email": "alice@example.com",
			"provider": "github", "roles": []string{"USER"},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
	})
	mux.HandleFunc("GET /api/forums/threads", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{
			"content": []map[string]any{
				{"id": 1, "title": "Welcome", "category": "general", "postCount": 3, "pinned": true,
					"author": map[string]any{"username": "admin"}},
				{"id": 2, "title": "Build logs", "category": "help", "postCount": 0},
			},
			"totalElements": 2, "totalPages": 1, "size": 20, "number": 0,
		})
	})
	mux.HandleFunc("GET /api/forums/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Thread not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "title": "Welcome", "content": "Say hi!",
			"posts": []map[string]any{{"id": 10, "content": "hi", "author": map[string]any{"username": "bob"}}},
		})
	})
	mux.HandleFunc("POST /api/forums/threads", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "title": "Hello"})
	})
	mux.HandleFunc("POST /api/forums/threads/{id}/posts", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 11, "content": "reply"})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeForum) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	f.bodies[key] = string(body)
	f.auth[key] = r.Header.Get("Authorization")
}

func (f *fakeForum) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.record(r)
	f.mu.Lock()
	reject := f.rejectAll
	f.mu.Unlock()
	if reject || r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Unauthorized"})
		return false
	}
	return true
}

func (f *fakeForum) rejectWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAll = true
}

func (f *fakeForum) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeForum) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeForum) authorization(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv runs commands against a fake forum with a file token store in a
// temporary directory.
type testEnv struct {
	forum     *fakeForum
	configDir string
	tokenDir  string
}

func newTestEnv(t *testing.T, f *fakeForum, extraConfig ...string) *testEnv {
	t.Helper()
	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvTokenStore, "")

	env := &testEnv{
		forum:     f,
		configDir: t.TempDir(),
		tokenDir:  t.TempDir(),
	}

	cfg := fmt.Sprintf("backendURL: %s\ntokenStore: file\ntokenDir: %s\n", f.server.URL, env.tokenDir)
	cfg += strings.Join(extraConfig, "")
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte(cfg), 0600))

	setRuntimeOptions(t, cli.WithLogOutput(io.Discard))
	return env
}

func setRuntimeOptions(t *testing.T, opts ...cli.RuntimeOption) {
	t.Helper()
	original := runtimeOptions
	runtimeOptions = opts
	t.Cleanup(func() { runtimeOptions = original })
}

// login stores the valid test token as a previous login would have.
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.setToken(t, testToken)
}

func (e *testEnv) setToken(t *testing.T, token string) {
	t.Helper()
	store, err := tokenstore.NewFileStore(e.tokenDir, e.forum.server.URL)
	require.NoError(t, err)
	require.NoError(t, store.Set(token))
}

func (e *testEnv) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	store, err := tokenstore.NewFileStore(e.tokenDir, e.forum.server.URL)
	require.NoError(t, err)
	return store.Get()
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config", e.configDir, "--quiet"))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
