// Package claims decodes the user identity embedded in an access token.
//
// Tokens are read without signature verification: the client cannot hold the
// signing key, and the backend rejects forged tokens on every call anyway.
// Decoding never fails loudly. A malformed token yields the zero Identity so
// that a display glitch cannot block the rest of the client.
package claims

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claim keys issued by the backend. The long URIs come from the .NET identity
// stack; the short forms are used by the older token format.
const (
	ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimName           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	ClaimEmailAddress   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	ClaimRole           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// mapping lists, per identity field, the claim keys to try in order.
var mapping = struct {
	id, username, email, role, avatar []string
}{
	id:       []string{ClaimNameIdentifier, "nameid", "sub"},
	username: []string{ClaimName, "unique_name", "name"},
	email:    []string{"email", ClaimEmailAddress},
	role:     []string{ClaimRole, "role"},
	avatar:   []string{"fotoUrl", "avatarUrl", "picture"},
}

var parser = jwt.NewParser()

// decode reads the claims segment of a three-segment token. The header and
// signature are not looked at, so an unknown alg does not hide the claims.
func decode(token string) (jwt.MapClaims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	raw, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, false
	}
	mc := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &mc); err != nil {
		return nil, false
	}
	return mc, true
}

// Parse maps the token's claims onto an Identity. Missing claims leave the
// corresponding field empty; an undecodable token returns the zero Identity.
func Parse(token string) models.Identity {
	mc, ok := decode(token)
	if !ok {
		return models.Identity{}
	}

	return models.Identity{
		ID:        firstString(mc, mapping.id),
		Username:  firstString(mc, mapping.username),
		Email:     firstString(mc, mapping.email),
		Roles:     roles(mc, mapping.role),
		AvatarURL: firstString(mc, mapping.avatar),
	}
}

// Expiry returns the token's exp claim. ok is false when the token cannot be
// decoded or carries no exp claim, which callers treat as non-expiring.
func Expiry(token string) (exp time.Time, ok bool) {
	mc, decoded := decode(token)
	if !decoded {
		return time.Time{}, false
	}
	nd, err := mc.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// Expired reports whether the token's exp claim lies at or before now.
// Tokens without exp never expire from the client's point of view.
func Expired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	return ok && !now.Before(exp)
}

func firstString(mc jwt.MapClaims, keys []string) string {
	for _, k := range keys {
		if s := asString(mc[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func roles(mc jwt.MapClaims, keys []string) models.Roles {
	for _, k := range keys {
		switch value := mc[k].(type) {
		case string:
			if value != "" {
				return models.Roles{value}
			}
		case []any:
			var out models.Roles
			for _, item := range value {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}
