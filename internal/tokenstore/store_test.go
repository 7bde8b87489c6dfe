package tokenstore

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"memory", KindMemory, false},
		{"FILE", KindFile, false},
		{" cookie ", KindCookie, false},
		{"localStorage", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_SelectsSingleBacking(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		kind Kind
	}{
		{KindMemory},
		{KindFile},
		{KindCookie},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			store, err := New(Config{Kind: tt.kind, BackendURL: "http://localhost:8080", Dir: dir})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, store.Kind())
		})
	}

	_, err := New(Config{Kind: "session"})
	assert.Error(t, err)
}

// Every backing must honour the same Set/Get/Clear contract.
func TestStoreContract(t *testing.T) {
	backings := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir(), "http://localhost:8080")
			require.NoError(t, err)
			return s
		},
		"cookie": func(t *testing.T) Store {
			s, err := NewCookieStore("http://localhost:8080", "")
			require.NoError(t, err)
			return s
		},
	}

	for name, newStore := range backings {
		t.Run(name, func(t *testing.T) {
			t.Run("set then get", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set("abc123"))

				got, ok := s.Get()
				assert.True(t, ok)
				assert.Equal(t, "abc123", got)

				got, ok = s.Get()
				assert.True(t, ok)
				assert.Equal(t, "abc123", got)
			})

			t.Run("set replaces", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set("first"))
				require.NoError(t, s.Set("second"))

				got, _ := s.Get()
				assert.Equal(t, "second", got)
			})

			t.Run("clear", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set("abc123"))
				s.Clear()

				got, ok := s.Get()
				assert.False(t, ok)
				assert.Empty(t, got)
			})

			t.Run("blank tokens rejected", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set("keep-me"))

				for _, bad := range []string{"", "   ", "\t\n"} {
					err := s.Set(bad)
					assert.ErrorIs(t, err, ErrInvalidToken)
				}

				got, ok := s.Get()
				assert.True(t, ok)
				assert.Equal(t, "keep-me", got)
			})

			t.Run("blank token on empty store", func(t *testing.T) {
				s := newStore(t)
				assert.ErrorIs(t, s.Set(""), ErrInvalidToken)

				_, ok := s.Get()
				assert.False(t, ok)
			})
		})
	}
}

func TestRedacted(t *testing.T) {
	r := Redact("secret-token")

	assert.Equal(t, "[REDACTED]", r.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", r))
	assert.Equal(t, "tokenstore.Redacted{[REDACTED]}", fmt.Sprintf("%#v", r))
	assert.Equal(t, "secret-token", r.Value())
	assert.False(t, r.IsEmpty())

	data, err := json.Marshal(map[string]Redacted{"token": r})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")

	assert.Equal(t, "[NONE]", Redact("").String())
	assert.True(t, Redact("").IsEmpty())
}
