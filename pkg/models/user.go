package models

import (
	"encoding/json"
)

// Identity providers a user account can originate from.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// User is the profile returned by GET /api/auth/me.
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Provider  string  `json:"provider"`
	Roles     Roles   `json:"roles"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Avatar returns the avatar URL or an empty string when the user has none.
func (u *User) Avatar() string {
	if u == nil || u.AvatarURL == nil {
		return ""
	}
	return *u.AvatarURL
}

// Roles is the set of roles granted to a user. Duplicates sent by the server
// are collapsed on decode; order of first appearance is kept.
type Roles []string

// UnmarshalJSON decodes a JSON array into a de-duplicated role set.
func (r *Roles) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(raw))
	out := make(Roles, 0, len(raw))
	for _, role := range raw {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	*r = out
	return nil
}

// Has reports whether the set contains role.
func (r Roles) Has(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}
