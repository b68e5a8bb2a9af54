package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.call(ctx, http.MethodPost, PathRegister, req, nil)
}

// Login authenticates and returns the issued credential. It does not touch
// the session store; persisting the credential is the caller's job.
func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.Credential, error) {
	var resp tokenResponse
	if err := c.call(ctx, http.MethodPost, PathLogin, req, &resp); err != nil {
		return models.Credential{}, err
	}
	cred := resp.credential()
	if cred.AccessToken == "" {
		return models.Credential{}, newLocalError(errors.New("login response carried no access token"))
	}
	return cred, nil
}

func (c *HTTPClient) RequestResetCode(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, PathRequestResetCode, map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return c.call(ctx, http.MethodPost, PathResetPassword, req, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, PathLogout, nil, nil)
}

// CheckAccess probes the authenticated (or, with admin set, the admin-only)
// endpoint and returns the server's greeting.
func (c *HTTPClient) CheckAccess(ctx context.Context, admin bool) (string, error) {
	path := PathAuthEndpoint
	if admin {
		path = PathAdminEndpoint
	}

	raw, err := c.do(ctx, &request{method: http.MethodGet, path: path})
	if err != nil {
		return "", err
	}
	return stringifyBody(raw), nil
}

func (c *HTTPClient) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.call(ctx, http.MethodGet, PathPosts, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost returns the stored post, or nil when the server answered
// without one.
func (c *HTTPClient) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	return c.postCall(ctx, http.MethodPost, PathPosts, in)
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id models.ID, in models.PostInput) (*models.Post, error) {
	return c.postCall(ctx, http.MethodPut, postPath(id.String()), in)
}

func (c *HTTPClient) DeletePost(ctx context.Context, id models.ID) error {
	return c.call(ctx, http.MethodDelete, postPath(id.String()), nil, nil)
}

// ReplyToPost returns the created reply, or nil when the server answered
// without one.
func (c *HTTPClient) ReplyToPost(ctx context.Context, id models.ID, in models.ReplyInput) (*models.Reply, error) {
	var reply models.Reply
	if err := c.call(ctx, http.MethodPost, postRepliesPath(id.String()), in, &reply); err != nil {
		return nil, err
	}
	if reply.Author == "" && reply.Body == "" {
		return nil, nil
	}
	return &reply, nil
}

// LikePost toggles the caller's like. The server may or may not echo the
// updated post.
func (c *HTTPClient) LikePost(ctx context.Context, id models.ID) (*models.Post, error) {
	return c.postCall(ctx, http.MethodPost, postLikePath(id.String()), nil)
}

func (c *HTTPClient) postCall(ctx context.Context, method, path string, in any) (*models.Post, error) {
	var post models.Post
	if err := c.call(ctx, method, path, in, &post); err != nil {
		return nil, err
	}
	if post.ID == "" {
		return nil, nil
	}
	return &post, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, in models.ProfileUpdate) error {
	return c.call(ctx, http.MethodPut, PathUpdateUser, in, nil)
}

func (c *HTTPClient) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.call(ctx, http.MethodGet, PathGetUsers, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id models.ID) error {
	return c.call(ctx, http.MethodDelete, PathDeleteUsers, map[string]string{"id": id.String()}, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.call(ctx, http.MethodPost, PathChangePassword, req, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, PathProfile, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
