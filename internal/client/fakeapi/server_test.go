package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/client/claims"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, username, password string) (string, string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/Auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["accessToken"], out["refreshToken"]
}

func TestLogin_IssuesTokenWithBackendClaims(t *testing.T) {
	s := New()
	s.AddUser("ana", "ana@dkt.io", "Secret1!", models.RoleProfessor, models.RoleAdmin)
	h := s.Handler()

	access, refresh := login(t, h, "ana", "Secret1!")
	require.NotEmpty(t, refresh)

	id := claims.Parse(access)
	assert.Equal(t, "ana", id.Username)
	assert.Equal(t, "ana@dkt.io", id.Email)
	assert.ElementsMatch(t, []string{models.RoleProfessor, models.RoleAdmin}, []string(id.Roles))
	assert.Equal(t, 1, s.Hits(http.MethodPost, "/api/Auth/login"))
}

func TestLogin_WrongPassword(t *testing.T) {
	s := New()
	s.AddUser("ana", "ana@dkt.io", "Secret1!")

	rec := do(t, s.Handler(), http.MethodPost, "/api/Auth/login", "", `{"email":"ana@dkt.io","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestExpireAccessTokens(t *testing.T) {
	s := New()
	s.AddUser("ana", "ana@dkt.io", "Secret1!")
	h := s.Handler()

	access, refresh := login(t, h, "ana", "Secret1!")
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/Community/posts", access, "").Code)

	s.ExpireAccessTokens()
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/Community/posts", access, "").Code)

	rec := do(t, h, http.MethodPost, "/api/Auth/refresh-token", "", `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// refresh tokens rotate
	rec = do(t, h, http.MethodPost, "/api/Auth/refresh-token", "", `{"refreshToken":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLike_Toggles(t *testing.T) {
	s := New()
	s.AddUser("ana", "ana@dkt.io", "Secret1!")
	id := s.AddPost("ana", "Hello", "World")
	h := s.Handler()
	access, _ := login(t, h, "ana", "Secret1!")

	var p models.Post
	rec := do(t, h, http.MethodPost, "/api/Community/posts/"+id.String()+"/like", access, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, []string{"ana"}, p.Likes)

	rec = do(t, h, http.MethodPost, "/api/Community/posts/"+id.String()+"/like", access, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Empty(t, p.Likes)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := New()
	s.AddUser("bob", "bob@dkt.io", "Secret1!")
	h := s.Handler()
	access, _ := login(t, h, "bob", "Secret1!")

	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/User/get-users", access, "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/Auth/Auth-endpoint", access, "").Code)
}
