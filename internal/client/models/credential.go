package models

// Credential is the bearer token pair issued by the backend. RefreshToken is
// optional; without it an expired session cannot be renewed.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// IsZero reports whether no access token is held.
func (c Credential) IsZero() bool {
	return c.AccessToken == ""
}
