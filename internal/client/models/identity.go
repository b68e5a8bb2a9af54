package models

import (
	"encoding/json"
	"slices"
)

// Roles assigned by the backend.
const (
	RoleStudent   = "Aluno"
	RoleProfessor = "Professor"
	RoleAdmin     = "Admin"
)

// Identity describes the authenticated user as read from the access token's
// claims. It is derived data: the token is authoritative and an Identity is
// always recomputable from it.
type Identity struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Roles     Roles  `json:"role,omitempty"`
	AvatarURL string `json:"fotoUrl,omitempty"`
}

// IsZero reports whether no claim could be mapped onto the identity.
func (i Identity) IsZero() bool {
	return i.ID == "" && i.Username == "" && i.Email == "" && len(i.Roles) == 0 && i.AvatarURL == ""
}

// HasRole reports whether role is among the identity's roles.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// Roles is a role list that the backend encodes either as a single string or
// as an array of strings, depending on how many roles the user holds.
type Roles []string

func (r Roles) MarshalJSON() ([]byte, error) {
	if len(r) == 1 {
		return json.Marshal(r[0])
	}
	return json.Marshal([]string(r))
}

func (r *Roles) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*r = nil
		} else {
			*r = Roles{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*r = many
	return nil
}
