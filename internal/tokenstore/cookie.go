package tokenstore

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"mdb/pkg/logging"
)

// CookieName is the cookie the backend sets at the end of the OAuth redirect.
const CookieName = "auth_token"

// httpOnlyPrefix marks HttpOnly entries in Netscape cookie files.
const httpOnlyPrefix = "#HttpOnly_"

// CookieStore reads the auth_token cookie once and then keeps the token in
// memory for the lifetime of the process.
//
// The cookie can reach the store from two sources: a Netscape-format cookie
// file exported from the browser, or the Cookie header of the OAuth callback
// request (AcceptCookie). Cookies are not port-scoped, so a backend on
// localhost exposes its cookie to the local callback listener as well.
type CookieStore struct {
	mu         sync.RWMutex
	host       string
	cookieFile string

	token    string
	read     bool
	observed string
}

// NewCookieStore creates a cookie-backed store for backendURL. cookieFile may
// be empty, in which case only cookies seen by the callback listener are used.
func NewCookieStore(backendURL, cookieFile string) (*CookieStore, error) {
	host := ""
	if backendURL != "" {
		u, err := url.Parse(backendURL)
		if err != nil {
			return nil, fmt.Errorf("invalid backend URL %q: %w", backendURL, err)
		}
		host = u.Hostname()
	}

	return &CookieStore{
		host:       host,
		cookieFile: cookieFile,
	}, nil
}

// Get returns the token, reading the cookie source on first use only.
func (s *CookieStore) Get() (string, bool) {
	s.mu.RLock()
	if s.read {
		token := s.token
		s.mu.RUnlock()
		return token, token != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.read {
		s.readLocked()
	}
	return s.token, s.token != ""
}

// Set installs a token in memory. The cookie itself is owned by the backend.
func (s *CookieStore) Set(token string) error {
	if err := validate(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.read = true
	s.mu.Unlock()

	logging.Audit("token_stored", "Bearer token stored", "store", string(KindCookie))
	return nil
}

// Clear drops the in-memory token and expires the auth_token entry of the
// cookie file, if one is configured.
func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.observed = ""
	s.read = true

	if s.cookieFile != "" {
		if err := s.expireCookieFileLocked(); err != nil {
			logging.Audit("token_delete_failed", "Expiring auth cookie failed",
				"store", string(KindCookie),
				"cookie_file", s.cookieFile,
				"error", err.Error(),
			)
			return
		}
	}

	logging.Audit("token_cleared", "Bearer token cleared", "store", string(KindCookie))
}

// AcceptCookie records an auth_token value observed on an incoming request.
// It becomes the token on the next Reload.
func (s *CookieStore) AcceptCookie(value string) {
	s.mu.Lock()
	s.observed = decodeCookieValue(value)
	s.mu.Unlock()
}

// Reload reads the cookie source again: an observed callback cookie wins over
// the cookie file.
func (s *CookieStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.readLocked()
	return nil
}

func (s *CookieStore) Kind() Kind {
	return KindCookie
}

// readLocked resolves the token from the cookie sources.
// REQUIRES: s.mu must be held (write lock) by the caller.
func (s *CookieStore) readLocked() {
	s.read = true

	if validate(s.observed) == nil {
		s.token = s.observed
		s.observed = ""
		return
	}

	if s.cookieFile == "" {
		return
	}

	value, err := s.readCookieFile()
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("TokenStore", "Ignoring unreadable cookie file %s: %v", s.cookieFile, err)
		}
		return
	}
	if validate(value) == nil {
		s.token = value
	}
}

// readCookieFile returns the newest unexpired auth_token value that matches
// the backend host.
func (s *CookieStore) readCookieFile() (string, error) {
	f, err := os.Open(s.cookieFile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	now := time.Now().Unix()
	var value string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseCookieLine(scanner.Text())
		if !ok || entry.name != CookieName || !s.domainMatches(entry.domain) {
			continue
		}
		if entry.expires != 0 && entry.expires < now {
			continue
		}
		value = decodeCookieValue(entry.value)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read cookie file: %w", err)
	}
	return value, nil
}

// expireCookieFileLocked rewrites matching auth_token entries with an empty
// value and an expiry in 1970, like a browser clearing the cookie.
func (s *CookieStore) expireCookieFileLocked() error {
	data, err := os.ReadFile(s.cookieFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	lines := strings.Split(string(data), "\n")
	changed := false
	for i, line := range lines {
		entry, ok := parseCookieLine(line)
		if !ok || entry.name != CookieName || !s.domainMatches(entry.domain) {
			continue
		}
		fields := strings.Split(line, "\t")
		fields[4] = "1"
		fields[6] = ""
		lines[i] = strings.Join(fields, "\t")
		changed = true
	}
	if !changed {
		return nil
	}
	return os.WriteFile(s.cookieFile, []byte(strings.Join(lines, "\n")), 0600)
}

func (s *CookieStore) domainMatches(domain string) bool {
	if s.host == "" {
		return true
	}
	domain = strings.TrimPrefix(domain, ".")
	return domain == s.host || strings.HasSuffix(s.host, "."+domain)
}

type cookieEntry struct {
	domain  string
	expires int64
	name    string
	value   string
}

// parseCookieLine parses one line of a Netscape cookie file:
// domain, include-subdomains, path, secure, expiry, name, value.
func parseCookieLine(line string) (cookieEntry, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.HasPrefix(line, httpOnlyPrefix) {
		line = strings.TrimPrefix(line, httpOnlyPrefix)
	} else if line == "" || strings.HasPrefix(line, "#") {
		return cookieEntry{}, false
	}

	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return cookieEntry{}, false
	}

	expires, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return cookieEntry{}, false
	}

	return cookieEntry{
		domain:  fields[0],
		expires: expires,
		name:    fields[5],
		value:   fields[6],
	}, true
}

func decodeCookieValue(v string) string {
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
