package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

/*************
 * Fake client
 *************/

// fakeClient implements client.Client. Every call is recorded by name; the
// preset fields decide what comes back.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	RegisterErr  error
	LastRegister models.RegisterRequest

	LoginCred models.Credential
	LoginErr  error
	LastLogin models.LoginRequest

	LogoutErr error

	ResetCodeErr  error
	ResetErr      error
	LastResetReq  models.ResetPasswordRequest
	LastResetMail string

	CheckAccessRet string

	Posts       []models.Post
	ListErr     error
	PostRet     *models.Post
	PostErr     error
	LastInput   models.PostInput
	ReplyRet    *models.Reply
	ReplyErr    error
	LastReply   models.ReplyInput
	LikeRet     *models.Post
	LikeErr     error
	DeleteErr   error
	LastPostID  models.ID
	UpdateErr   error
	Users       []models.User
	Profile     *models.User
	ChangeErr   error
	LastChange  models.ChangePasswordRequest
	LastProfile models.ProfileUpdate
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Register(_ context.Context, req models.RegisterRequest) error {
	f.record("Register")
	f.LastRegister = req
	return f.RegisterErr
}

func (f *fakeClient) Login(_ context.Context, req models.LoginRequest) (models.Credential, error) {
	f.record("Login")
	f.LastLogin = req
	return f.LoginCred, f.LoginErr
}

func (f *fakeClient) RefreshToken(context.Context, string) (models.Credential, error) {
	f.record("RefreshToken")
	return models.Credential{}, nil
}

func (f *fakeClient) RequestResetCode(_ context.Context, email string) error {
	f.record("RequestResetCode")
	f.LastResetMail = email
	return f.ResetCodeErr
}

func (f *fakeClient) ResetPassword(_ context.Context, req models.ResetPasswordRequest) error {
	f.record("ResetPassword")
	f.LastResetReq = req
	return f.ResetErr
}

func (f *fakeClient) Logout(context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

func (f *fakeClient) CheckAccess(context.Context, bool) (string, error) {
	f.record("CheckAccess")
	return f.CheckAccessRet, nil
}

func (f *fakeClient) ListPosts(context.Context) ([]models.Post, error) {
	f.record("ListPosts")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Post, len(f.Posts))
	for i, p := range f.Posts {
		out[i] = clonePost(p)
	}
	return out, nil
}

func (f *fakeClient) CreatePost(_ context.Context, in models.PostInput) (*models.Post, error) {
	f.record("CreatePost")
	f.LastInput = in
	return f.PostRet, f.PostErr
}

func (f *fakeClient) UpdatePost(_ context.Context, id models.ID, in models.PostInput) (*models.Post, error) {
	f.record("UpdatePost")
	f.LastPostID, f.LastInput = id, in
	return f.PostRet, f.UpdateErr
}

func (f *fakeClient) DeletePost(_ context.Context, id models.ID) error {
	f.record("DeletePost")
	f.LastPostID = id
	return f.DeleteErr
}

func (f *fakeClient) ReplyToPost(_ context.Context, id models.ID, in models.ReplyInput) (*models.Reply, error) {
	f.record("ReplyToPost")
	f.LastPostID, f.LastReply = id, in
	return f.ReplyRet, f.ReplyErr
}

func (f *fakeClient) LikePost(_ context.Context, id models.ID) (*models.Post, error) {
	f.record("LikePost")
	f.LastPostID = id
	return f.LikeRet, f.LikeErr
}

func (f *fakeClient) UpdateUser(_ context.Context, in models.ProfileUpdate) error {
	f.record("UpdateUser")
	f.LastProfile = in
	return nil
}

func (f *fakeClient) GetUsers(context.Context) ([]models.User, error) {
	f.record("GetUsers")
	return f.Users, nil
}

func (f *fakeClient) DeleteUser(context.Context, models.ID) error {
	f.record("DeleteUser")
	return nil
}

func (f *fakeClient) ChangePassword(_ context.Context, req models.ChangePasswordRequest) error {
	f.record("ChangePassword")
	f.LastChange = req
	return f.ChangeErr
}

func (f *fakeClient) GetProfile(context.Context) (*models.User, error) {
	f.record("GetProfile")
	return f.Profile, nil
}

/*************
 * Fake session
 *************/

type fakeSession struct {
	cred     models.Credential
	identity *models.Identity
	ttl      time.Duration
	cleared  int
	valid    bool
	clearErr error
}

var _ SessionStore = (*fakeSession)(nil)

func (s *fakeSession) Save(_ context.Context, cred models.Credential) (*models.Identity, error) {
	s.cred, s.ttl = cred, 0
	s.identity = &models.Identity{Username: "ana"}
	s.valid = true
	return s.identity, nil
}

func (s *fakeSession) SaveWithExpiry(ctx context.Context, cred models.Credential, ttl time.Duration) (*models.Identity, error) {
	id, err := s.Save(ctx, cred)
	s.ttl = ttl
	return id, err
}

func (s *fakeSession) Current(context.Context) (*models.Identity, error) {
	return s.identity, nil
}

func (s *fakeSession) IsValid(context.Context) (bool, error) {
	return s.valid, nil
}

func (s *fakeSession) Clear(context.Context) error {
	s.cleared++
	s.cred, s.identity, s.valid = models.Credential{}, nil, false
	return s.clearErr
}
