package cli

import (
	"errors"
	"fmt"
	"testing"

	"mdb/internal/api"
	"mdb/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestAuthRequiredError(t *testing.T) {
	err := &AuthRequiredError{Backend: "http://localhost:8080"}

	assert.Contains(t, err.Error(), "http://localhost:8080")
	assert.Contains(t, err.Error(), "mdb auth login")

	wrapped := fmt.Errorf("listing threads: %w", err)
	assert.True(t, errors.Is(wrapped, &AuthRequiredError{}))
	assert.False(t, errors.Is(wrapped, &AuthFailedError{}))
}

func TestAuthFailedError(t *testing.T) {
	reason := errors.New("callback timed out")
	err := &AuthFailedError{Backend: "http://localhost:8080", Reason: reason}

	assert.Contains(t, err.Error(), "callback timed out")
	assert.ErrorIs(t, err, reason)
	assert.True(t, errors.Is(fmt.Errorf("login: %w", err), &AuthFailedError{}))
}

func TestWrapAuthError(t *testing.T) {
	const backend = "http://localhost:8080"
	unauthorized := &api.Error{Kind: api.KindUnauthorized, Status: 401}
	notFound := &api.Error{Kind: api.KindNotFound, Status: 404}

	tests := []struct {
		name   string
		err    error
		expect func(t *testing.T, got error)
	}{
		{
			name: "nil",
			err:  nil,
			expect: func(t *testing.T, got error) {
				assert.NoError(t, got)
			},
		},
		{
			name: "no token",
			err:  fmt.Errorf("create thread: %w", session.ErrNoToken),
			expect: func(t *testing.T, got error) {
				var target *AuthRequiredError
				assert.ErrorAs(t, got, &target)
				assert.Equal(t, backend, target.Backend)
			},
		},
		{
			name: "unauthorized",
			err:  unauthorized,
			expect: func(t *testing.T, got error) {
				var target *AuthFailedError
				assert.ErrorAs(t, got, &target)
				assert.ErrorIs(t, got, unauthorized)
			},
		},
		{
			name: "other errors pass through",
			err:  notFound,
			expect: func(t *testing.T, got error) {
				assert.Same(t, notFound, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expect(t, WrapAuthError(backend, tt.err))
		})
	}
}
