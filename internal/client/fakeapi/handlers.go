package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		a := s.verify(token)
		s.mu.Unlock()
		if a == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, a.username)))
	})
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			a := s.accounts[caller(r)]
			allowed := a != nil && slices.Contains(a.roles, role)
			s.mu.Unlock()
			if !allowed {
				writeMessage(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func caller(r *http.Request) string {
	name, _ := r.Context().Value(ctxKey{}).(string)
	return name
}

/*************
 * Auth
 *************/

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username        string  `json:"username"`
		Email           string  `json:"email"`
		Password        string  `json:"password"`
		ConfirmPassword string  `json:"confirmPassword"`
		IsProfessor     bool    `json:"isProfessor"`
		InviteCode      *string `json:"inviteCode"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if in.Password != in.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accounts[in.Username]; taken {
		writeMessage(w, http.StatusBadRequest, "Username already taken")
		return
	}
	if s.accountByEmail(in.Email) != nil {
		writeMessage(w, http.StatusBadRequest, "Email already registered")
		return
	}

	role := models.RoleStudent
	if in.IsProfessor {
		if in.InviteCode == nil || *in.InviteCode != s.inviteCode {
			writeMessage(w, http.StatusBadRequest, "Invalid invite code")
			return
		}
		role = models.RoleProfessor
	}

	s.accounts[in.Username] = &account{
		id:       fmt.Sprintf("u-%d", len(s.accounts)+1),
		username: in.Username,
		email:    in.Email,
		password: in.Password,
		roles:    []string{role},
	}
	writeMessage(w, http.StatusOK, "User registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var a *account
	if in.Email != "" {
		a = s.accountByEmail(in.Email)
	} else {
		a = s.accounts[in.Username]
	}
	if a == nil || a.password != in.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	access, refresh, err := s.issue(a)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.refresh[in.RefreshToken]
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refresh, in.RefreshToken)

	access, refresh, err := s.issue(s.accounts[username])
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": access, "refreshToken": refresh})
}

func (s *Server) handleRequestResetCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountByEmail(in.Email) == nil {
		writeMessage(w, http.StatusNotFound, "Email not found")
		return
	}
	s.nextResetCode++
	s.resetCodes[strings.ToLower(in.Email)] = fmt.Sprintf("%06d", 100000+s.nextResetCode)
	writeMessage(w, http.StatusOK, "Reset code sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Code            string `json:"code"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
		Email           string `json:"email"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accountByEmail(in.Email)
	if a == nil {
		writeMessage(w, http.StatusNotFound, "Email not found")
		return
	}
	key := strings.ToLower(in.Email)
	if code, ok := s.resetCodes[key]; !ok || code != in.Code {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	delete(s.resetCodes, key)
	a.password = in.NewPassword
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.access, token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuthEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Authenticated as "+caller(r))
}

func (s *Server) handleAdminEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Admin access granted to "+caller(r))
}

/*************
 * Community
 *************/

type replyDTO struct {
	Username string `json:"username"`
	Conteudo string `json:"conteudo"`
	CriadoEm string `json:"criadoEm"`
}

type postDTO struct {
	ID       int        `json:"id"`
	Titulo   string     `json:"titulo"`
	Conteudo string     `json:"conteudo"`
	Username string     `json:"username"`
	CriadoEm string     `json:"criadoEm"`
	Likes    []string   `json:"likes"`
	Replies  []replyDTO `json:"replies"`
}

// serverTime renders times without a zone, as the real backend does.
func serverTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000")
}

func (p *post) dto() postDTO {
	d := postDTO{
		ID:       p.id,
		Titulo:   p.title,
		Conteudo: p.body,
		Username: p.author,
		CriadoEm: serverTime(p.created),
		Likes:    slices.Clone(p.likes),
		Replies:  make([]replyDTO, 0, len(p.replies)),
	}
	if d.Likes == nil {
		d.Likes = []string{}
	}
	for _, rp := range p.replies {
		d.Replies = append(d.Replies, replyDTO{Username: rp.author, Conteudo: rp.body, CriadoEm: serverTime(rp.created)})
	}
	return d
}

type postInput struct {
	Titulo   string `json:"Titulo"`
	Conteudo string `json:"Conteudo"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]postDTO, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.dto())
	}
	wrap := s.wrapLists
	s.mu.Unlock()

	if wrap {
		writeJSON(w, http.StatusOK, map[string]any{"data": out, "total": len(out)})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Titulo) == "" || strings.TrimSpace(in.Conteudo) == "" {
		writeMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	s.mu.Lock()
	p := s.newPost(caller(r), in.Titulo, in.Conteudo)
	d, echo := p.dto(), s.echoWrites
	s.mu.Unlock()

	s.answerWrite(w, http.StatusCreated, d, echo)
}

func (s *Server) answerWrite(w http.ResponseWriter, status int, d postDTO, echo bool) {
	if !echo {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, d)
}

// ownedPost loads the post in the URL and checks that the caller may modify
// it. It writes the error response itself and returns nil on failure. Caller
// holds mu.
func (s *Server) ownedPost(w http.ResponseWriter, r *http.Request) (int, *post) {
	i, p := s.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return -1, nil
	}
	a := s.accounts[caller(r)]
	if p.author != a.username && !slices.Contains(a.roles, models.RoleAdmin) {
		writeMessage(w, http.StatusForbidden, "Not the author")
		return -1, nil
	}
	return i, p
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	_, p := s.ownedPost(w, r)
	if p == nil {
		s.mu.Unlock()
		return
	}
	p.title, p.body = in.Titulo, in.Conteudo
	d, echo := p.dto(), s.echoWrites
	s.mu.Unlock()

	s.answerWrite(w, http.StatusOK, d, echo)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, p := s.ownedPost(w, r)
	if p == nil {
		return
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Conteudo string `json:"Conteudo"`
	}
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Conteudo) == "" {
		writeMessage(w, http.StatusBadRequest, "Content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p := s.findPost(chi.URLParam(r, "id"))
	if p == nil {
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}
	rp := reply{author: caller(r), body: in.Conteudo, created: s.now().UTC()}
	p.replies = append(p.replies, rp)
	writeJSON(w, http.StatusCreated, replyDTO{Username: rp.author, Conteudo: rp.body, CriadoEm: serverTime(rp.created)})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, p := s.findPost(chi.URLParam(r, "id"))
	if p == nil {
		s.mu.Unlock()
		writeMessage(w, http.StatusNotFound, "Post not found")
		return
	}
	who := caller(r)
	if i := slices.Index(p.likes, who); i >= 0 {
		p.likes = slices.Delete(p.likes, i, i+1)
	} else {
		p.likes = append(p.likes, who)
	}
	d, echo := p.dto(), s.echoWrites
	s.mu.Unlock()

	s.answerWrite(w, http.StatusOK, d, echo)
}

/*************
 * User
 *************/

type userDTO struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     []string `json:"role"`
	FotoURL  string   `json:"fotoUrl,omitempty"`
}

func (a *account) dto() userDTO {
	return userDTO{ID: a.id, Username: a.username, Email: a.email, Role: slices.Clone(a.roles), FotoURL: a.avatar}
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		FotoURL  string `json:"fotoUrl"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accounts[caller(r)]
	if in.Username != "" && in.Username != a.username {
		if _, taken := s.accounts[in.Username]; taken {
			writeMessage(w, http.StatusBadRequest, "Username already taken")
			return
		}
		s.rename(a, in.Username)
	}
	if in.Email != "" {
		a.email = in.Email
	}
	a.avatar = in.FotoURL
	writeJSON(w, http.StatusOK, a.dto())
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accounts[caller(r)]
	if a.password != in.CurrentPassword {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if in.NewPassword != in.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	a.password = in.NewPassword
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.accounts[caller(r)].dto())
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]userDTO, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.dto())
	}
	wrap := s.wrapLists
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b userDTO) int { return strings.Compare(a.Username, b.Username) })
	if wrap {
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ID string `json:"id"`
	}
	if err := decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, a := range s.accounts {
		if a.id == in.ID {
			delete(s.accounts, name)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "User not found")
}

// rename moves a to a new username, carrying its live tokens along. Caller
// holds mu.
func (s *Server) rename(a *account, username string) {
	old := a.username
	delete(s.accounts, old)
	a.username = username
	s.accounts[username] = a

	for _, m := range []map[string]string{s.access, s.refresh} {
		for tok, owner := range m {
			if owner == old {
				m[tok] = username
			}
		}
	}
	for _, p := range s.posts {
		if p.author == old {
			p.author = username
		}
	}
}
