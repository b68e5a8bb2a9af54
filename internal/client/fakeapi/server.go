// Package fakeapi is an in-memory stand-in for the DKT Learn backend. It
// speaks the same REST routes, issues real HS256 tokens carrying the
// backend's claim keys, and counts hits per route so end-to-end tests can
// assert how often the client talked to it.
package fakeapi

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/claims"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultInviteCode unlocks professor registration.
const DefaultInviteCode = "PROF-2024"

type account struct {
	id       string
	username string
	email    string
	password string
	roles    []string
	avatar   string
}

type reply struct {
	author  string
	body    string
	created time.Time
}

type post struct {
	id      int
	title   string
	body    string
	author  string
	created time.Time
	likes   []string
	replies []reply
}

// Server holds the fake backend's state. The zero value is not usable; use New.
type Server struct {
	mu sync.Mutex

	secret     []byte
	accessTTL  time.Duration
	inviteCode string
	now        func() time.Time

	accounts      map[string]*account // by username
	posts         []*post
	nextPostID    int
	access        map[string]string // live access token -> username
	refresh       map[string]string // live refresh token -> username
	resetCodes    map[string]string // email -> code
	nextResetCode int
	hits          map[string]int
	wrapLists     bool
	echoWrites    bool
}

// Option customizes a Server.
type Option func(*Server)

// WithAccessTTL sets the lifetime written into the exp claim.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithClock overrides the server's notion of now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithDataEnvelope makes list endpoints answer {"data": [...]} instead of a
// bare array.
func WithDataEnvelope() Option {
	return func(s *Server) { s.wrapLists = true }
}

// WithoutEcho makes create, edit and like answer 204 with no body.
func WithoutEcho() Option {
	return func(s *Server) { s.echoWrites = false }
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte(uuid.NewString()),
		accessTTL:  time.Hour,
		inviteCode: DefaultInviteCode,
		now:        time.Now,
		accounts:   map[string]*account{},
		nextPostID: 1,
		access:     map[string]string{},
		refresh:    map[string]string{},
		resetCodes: map[string]string{},
		hits:       map[string]int{},
		echoWrites: true,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the chi router serving the backend routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)

	r.Route("/api/Auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh-token", s.handleRefresh)
		r.Post("/request-reset-code", s.handleRequestResetCode)
		r.Post("/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/logout", s.handleLogout)
			r.Get("/Auth-endpoint", s.handleAuthEndpoint)
			r.With(s.requireRole(models.RoleAdmin)).Get("/Admin-endpoint", s.handleAdminEndpoint)
		})
	})

	r.Route("/api/Community/posts", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleListPosts)
		r.Post("/", s.handleCreatePost)
		r.Put("/{id}", s.handleUpdatePost)
		r.Delete("/{id}", s.handleDeletePost)
		r.Post("/{id}/replies", s.handleReply)
		r.Post("/{id}/like", s.handleLike)
	})

	r.Route("/api/User", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Put("/update-user", s.handleUpdateUser)
		r.Post("/change-password", s.handleChangePassword)
		r.Get("/profile", s.handleProfile)
		r.With(s.requireRole(models.RoleAdmin)).Get("/get-users", s.handleGetUsers)
		r.With(s.requireRole(models.RoleAdmin)).Delete("/delete-users", s.handleDeleteUser)
	})

	return r
}

// AddUser creates an account directly, bypassing registration rules.
func (s *Server) AddUser(username, email, password string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(roles) == 0 {
		roles = []string{models.RoleStudent}
	}
	s.accounts[username] = &account{
		id:       uuid.NewString(),
		username: username,
		email:    email,
		password: password,
		roles:    roles,
	}
}

// AddPost seeds a post authored by username and returns its id.
func (s *Server) AddPost(username, title, body string) models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.newPost(username, title, body)
	return models.ID(fmt.Sprint(p.id))
}

// Hits reports how many requests reached path, e.g. "POST /api/Auth/login".
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// ResetCode returns the last code issued for email.
func (s *Server) ResetCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetCodes[strings.ToLower(email)]
}

// ExpireAccessTokens invalidates every issued access token while keeping
// refresh tokens alive, as if they had all timed out.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.access)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

// Password returns the stored password of username.
func (s *Server) Password(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[username]; ok {
		return a.password
	}
	return ""
}

func (s *Server) newPost(author, title, body string) *post {
	p := &post{
		id:      s.nextPostID,
		title:   title,
		body:    body,
		author:  author,
		created: s.now().UTC(),
	}
	s.nextPostID++
	s.posts = append(s.posts, p)
	return p
}

func (s *Server) findPost(id string) (int, *post) {
	for i, p := range s.posts {
		if fmt.Sprint(p.id) == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *Server) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.email, email) {
			return a
		}
	}
	return nil
}

// issue mints an access token for a and a fresh refresh token. Caller holds mu.
func (s *Server) issue(a *account) (string, string, error) {
	now := s.now()
	mc := jwt.MapClaims{
		claims.ClaimNameIdentifier: a.id,
		claims.ClaimName:           a.username,
		claims.ClaimEmailAddress:   a.email,
		"jti":                      uuid.NewString(),
		"iat":                      now.Unix(),
		"exp":                      now.Add(s.accessTTL).Unix(),
	}
	if len(a.roles) == 1 {
		mc[claims.ClaimRole] = a.roles[0]
	} else {
		mc[claims.ClaimRole] = slices.Clone(a.roles)
	}
	if a.avatar != "" {
		mc["fotoUrl"] = a.avatar
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	refresh := uuid.NewString()

	s.access[access] = a.username
	s.refresh[refresh] = a.username
	return access, refresh, nil
}

// verify checks the signature and liveness of an access token and returns
// the account it belongs to. Caller holds mu.
func (s *Server) verify(token string) *account {
	username, ok := s.access[token]
	if !ok {
		return nil
	}
	_, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil
	}
	return s.accounts[username]
}
