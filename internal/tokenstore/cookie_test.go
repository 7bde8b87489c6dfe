package tokenstore

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCookieFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	content := "# Netscape HTTP Cookie File\n" + strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func cookieLine(domain, name, value string, expires int64) string {
	return strings.Join([]string{domain, "FALSE", "/", "FALSE", strconv.FormatInt(expires, 10), name, value}, "\t")
}

func TestCookieStore_ReadsCookieFile(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		lines  []string
		want   string
		wantOK bool
	}{
		{
			name:   "matching cookie",
			lines:  []string{cookieLine("localhost", "auth_token", "abc123", future)},
			want:   "abc123",
			wantOK: true,
		},
		{
			name:   "http only entry",
			lines:  []string{httpOnlyPrefix + cookieLine("localhost", "auth_token", "abc123", future)},
			want:   "abc123",
			wantOK: true,
		},
		{
			name:   "session cookie without expiry",
			lines:  []string{cookieLine("localhost", "auth_token", "abc123", 0)},
			want:   "abc123",
			wantOK: true,
		},
		{
			name:   "url encoded value",
			lines:  []string{cookieLine("localhost", "auth_token", "a%2Bb%3D", future)},
			want:   "a+b=",
			wantOK: true,
		},
		{
			name:  "expired cookie",
			lines: []string{cookieLine("localhost", "auth_token", "abc123", 1)},
		},
		{
			name:  "other host",
			lines: []string{cookieLine("example.com", "auth_token", "abc123", future)},
		},
		{
			name:  "other cookie",
			lines: []string{cookieLine("localhost", "JSESSIONID", "abc123", future)},
		},
		{
			name:  "empty value",
			lines: []string{cookieLine("localhost", "auth_token", "", future)},
		},
		{
			name:  "malformed line",
			lines: []string{"localhost auth_token abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewCookieStore("http://localhost:8080", writeCookieFile(t, tt.lines...))
			require.NoError(t, err)

			got, ok := store.Get()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCookieStore_SubdomainMatch(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	path := writeCookieFile(t, cookieLine(".example.com", "auth_token", "abc123", future))

	store, err := NewCookieStore("https://api.example.com", path)
	require.NoError(t, err)

	got, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)
}

func TestCookieStore_ReadsOnce(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	path := writeCookieFile(t, cookieLine("localhost", "auth_token", "first", future))

	store, err := NewCookieStore("http://localhost:8080", path)
	require.NoError(t, err)

	got, _ := store.Get()
	require.Equal(t, "first", got)

	require.NoError(t, os.WriteFile(path, []byte(cookieLine("localhost", "auth_token", "second", future)+"\n"), 0600))

	got, _ = store.Get()
	assert.Equal(t, "first", got)

	require.NoError(t, store.Reload())
	got, _ = store.Get()
	assert.Equal(t, "second", got)
}

func TestCookieStore_ClearExpiresCookie(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	path := writeCookieFile(t,
		cookieLine("localhost", "auth_token", "abc123", future),
		cookieLine("localhost", "theme", "dark", future),
	)

	store, err := NewCookieStore("http://localhost:8080", path)
	require.NoError(t, err)
	_, ok := store.Get()
	require.True(t, ok)

	store.Clear()

	_, ok = store.Get()
	assert.False(t, ok)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abc123")
	assert.Contains(t, string(data), "dark")

	// A fresh process does not pick the token up again.
	require.NoError(t, store.Reload())
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestCookieStore_AcceptCookie(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	path := writeCookieFile(t, cookieLine("localhost", "auth_token", "from-file", future))

	store, err := NewCookieStore("http://localhost:8080", path)
	require.NoError(t, err)

	store.AcceptCookie("from-callback")
	require.NoError(t, store.Reload())

	got, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "from-callback", got)
}

func TestCookieStore_NoSources(t *testing.T) {
	store, err := NewCookieStore("http://localhost:8080", "")
	require.NoError(t, err)

	_, ok := store.Get()
	assert.False(t, ok)

	store.AcceptCookie("   ")
	require.NoError(t, store.Reload())
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestCookieStore_MissingFile(t *testing.T) {
	store, err := NewCookieStore("http://localhost:8080", filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)

	_, ok := store.Get()
	assert.False(t, ok)

	// Clearing with a missing file still clears memory.
	require.NoError(t, store.Set("abc123"))
	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)
}
