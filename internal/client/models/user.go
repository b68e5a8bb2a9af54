package models

import (
	"encoding/json"
	"strings"
)

// User is an account as listed by the admin endpoint or returned by the
// profile endpoint.
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Roles     Roles  `json:"role,omitempty"`
	AvatarURL string `json:"fotoUrl,omitempty"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"fotoUrl"`
}

// RegisterRequest is the sign-up form. InviteCode is only meaningful, and
// then required, for professor accounts.
type RegisterRequest struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	IsProfessor     bool    `json:"isProfessor"`
	InviteCode      *string `json:"inviteCode"`
}

// ResetPasswordRequest completes a password reset with the mailed code.
type ResetPasswordRequest struct {
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
}

// ChangePasswordRequest changes the password of the logged-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest authenticates with either a username or an email. The wire
// key is "email" when Login contains '@' and "username" otherwise.
type LoginRequest struct {
	Login      string
	Password   string
	RememberMe bool
}

func (r LoginRequest) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"password":   r.Password,
		"rememberMe": r.RememberMe,
	}
	if strings.Contains(r.Login, "@") {
		body["email"] = r.Login
	} else {
		body["username"] = r.Login
	}
	return json.Marshal(body)
}
