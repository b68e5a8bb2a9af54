package client

import (
	"context"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

// Client is the transport-agnostic contract with the DKT Learn backend.
// Every method returns *APIError on failure.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, req models.LoginRequest) (models.Credential, error)
	RefreshToken(ctx context.Context, refreshToken string) (models.Credential, error)
	RequestResetCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	Logout(ctx context.Context) error
	CheckAccess(ctx context.Context, admin bool) (string, error)

	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id models.ID) error
	ReplyToPost(ctx context.Context, id models.ID, in models.ReplyInput) (*models.Reply, error)
	LikePost(ctx context.Context, id models.ID) (*models.Post, error)

	UpdateUser(ctx context.Context, in models.ProfileUpdate) error
	GetUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id models.ID) error
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	GetProfile(ctx context.Context) (*models.User, error)
}

// TokenStore is the slice of the session store the HTTP layer needs: it
// reads the credential before each call, writes renewed tokens, and wipes
// the session when renewal fails.
type TokenStore interface {
	Credential(ctx context.Context) (models.Credential, error)
	Renew(ctx context.Context, cred models.Credential) error
	Clear(ctx context.Context) error
}
