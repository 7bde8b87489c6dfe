package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Decode(t *testing.T) {
	body := `{"id":1,"username":"alice","email":"alice@example.com","provider":"github","roles":["USER","ADMIN","USER"]}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(body), &u))

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, ProviderGitHub, u.Provider)
	assert.Equal(t, Roles{"USER", "ADMIN"}, u.Roles)
	assert.True(t, u.Roles.Has("ADMIN"))
	assert.False(t, u.Roles.Has("MODERATOR"))
	assert.Nil(t, u.AvatarURL)
	assert.Equal(t, "", u.Avatar())
}

func TestUser_AvatarPresent(t *testing.T) {
	body := `{"id":2,"username":"bob","email":"bob@example.com","avatarUrl":"https://cdn.example.com/bob.png","provider":"google","roles":[]}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(body), &u))

	assert.Equal(t, "https://cdn.example.com/bob.png", u.Avatar())
	assert.Empty(t, u.Roles)
}

func TestRoles_RejectsNonArray(t *testing.T) {
	var r Roles
	assert.Error(t, json.Unmarshal([]byte(`"USER"`), &r))
}
