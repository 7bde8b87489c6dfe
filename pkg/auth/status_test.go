package auth

import (
	"testing"

	"mdb/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	user := &models.User{Username: "alice"}

	tests := []struct {
		name      string
		hadToken  bool
		user      *models.User
		stillHeld bool
		want      State
	}{
		{"no token", false, nil, false, StateNotAuthenticated},
		{"verified", true, user, true, StateAuthenticated},
		{"rejected", true, nil, false, StateRejected},
		{"unreachable", true, nil, true, StateUnverified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.hadToken, tt.user, tt.stillHeld))
		})
	}
}

func TestState_NeedsLogin(t *testing.T) {
	assert.True(t, StateNotAuthenticated.NeedsLogin())
	assert.True(t, StateRejected.NeedsLogin())
	assert.False(t, StateAuthenticated.NeedsLogin())
	assert.False(t, StateUnverified.NeedsLogin())
}
