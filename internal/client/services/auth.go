package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/dmitrijs2005/dktlearn/internal/logging"
)

// DefaultSessionTTL bounds a login made without "remember me".
const DefaultSessionTTL = time.Hour

// SessionStore is the session persistence the auth facade writes to.
// *session.Store satisfies it.
type SessionStore interface {
	Save(ctx context.Context, cred models.Credential) (*models.Identity, error)
	SaveWithExpiry(ctx context.Context, cred models.Credential, ttl time.Duration) (*models.Identity, error)
	Current(ctx context.Context) (*models.Identity, error)
	IsValid(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create an account; the password policy is checked first.
//   - Login: authenticate and persist the session; returns the identity.
//   - Logout: best-effort server logout; the local session is always cleared.
//   - RequestResetCode / ResetPassword: the two halves of a password reset.
//   - CurrentUser / IsAuthenticated / HasRole: read the stored session.
//   - CheckAccess: probe the authenticated or admin-only endpoint.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, login, password string, rememberMe bool) (*models.Identity, error)
	Logout(ctx context.Context) error
	RequestResetCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, newPassword, email string) error
	CurrentUser(ctx context.Context) (*models.Identity, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	HasRole(ctx context.Context, role string) (bool, error)
	CheckAccess(ctx context.Context, admin bool) (string, error)
}

// authService is the concrete AuthService backed by a remote Client and the
// local session store. It is the only writer of the session.
type authService struct {
	client     client.Client
	session    SessionStore
	sessionTTL time.Duration
	logger     logging.Logger
}

// AuthOption customizes the auth facade.
type AuthOption func(*authService)

// WithSessionTTL sets how long a session started without "remember me" lasts.
func WithSessionTTL(d time.Duration) AuthOption {
	return func(a *authService) {
		if d > 0 {
			a.sessionTTL = d
		}
	}
}

// WithAuthLogger sets the facade's logger.
func WithAuthLogger(l logging.Logger) AuthOption {
	return func(a *authService) { a.logger = l }
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(c client.Client, session SessionStore, opts ...AuthOption) AuthService {
	a := &authService{
		client:     c,
		session:    session,
		sessionTTL: DefaultSessionTTL,
		logger:     logging.Discard(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Register validates the sign-up form locally and creates the account. A
// missing confirmation defaults to the password itself.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		return invalid("username", "username is required")
	}
	if req.Email == "" {
		return invalid("email", "email is required")
	}
	if !strings.Contains(req.Email, "@") {
		return invalid("email", "email is not valid")
	}
	if err := checkPassword("password", req.Password); err != nil {
		return err
	}
	if req.ConfirmPassword == "" {
		req.ConfirmPassword = req.Password
	}
	if req.ConfirmPassword != req.Password {
		return invalid("confirmPassword", "passwords do not match")
	}

	if req.IsProfessor {
		if req.InviteCode == nil || blank(*req.InviteCode) {
			return invalid("inviteCode", "an invite code is required for professor accounts")
		}
		code := strings.TrimSpace(*req.InviteCode)
		req.InviteCode = &code
	} else {
		req.InviteCode = nil
	}

	if err := a.client.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Login authenticates with a username or an email. With rememberMe unset the
// session also ends after the configured TTL.
func (a *authService) Login(ctx context.Context, login, password string, rememberMe bool) (*models.Identity, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, invalid("login", "username or email is required")
	}
	if password == "" {
		return nil, invalid("password", "password is required")
	}

	cred, err := a.client.Login(ctx, models.LoginRequest{Login: login, Password: password, RememberMe: rememberMe})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var identity *models.Identity
	if rememberMe {
		identity, err = a.session.Save(ctx, cred)
	} else {
		identity, err = a.session.SaveWithExpiry(ctx, cred, a.sessionTTL)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	a.logger.Info(ctx, "logged in", "login", login, "remember_me", rememberMe)
	return identity, nil
}

// Logout tells the server the session is over and wipes it locally. The
// local session is cleared even when the server call fails; that failure is
// still returned. Without a current identity the server is not called, any
// stored credential is still wiped, and ErrNotLoggedIn is returned.
func (a *authService) Logout(ctx context.Context) error {
	identity, err := a.session.Current(ctx)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if identity == nil {
		// a token without a readable identity can still be stored and sent
		if err := a.session.Clear(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		return common.ErrNotLoggedIn
	}

	serverErr := a.client.Logout(ctx)
	if serverErr != nil {
		a.logger.Warn(ctx, "server logout failed", "error", serverErr)
	}

	if err := a.session.Clear(ctx); err != nil {
		return errors.Join(fmt.Errorf("logout: %w", err), serverErr)
	}
	if serverErr != nil {
		return fmt.Errorf("logout: %w", serverErr)
	}
	return nil
}

func (a *authService) RequestResetCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "email is required")
	}
	if err := a.client.RequestResetCode(ctx, email); err != nil {
		return fmt.Errorf("request reset code: %w", err)
	}
	return nil
}

// ResetPassword completes a reset with the mailed code. Local checks cover
// presence and the password policy.
func (a *authService) ResetPassword(ctx context.Context, code, newPassword, email string) error {
	code, email = strings.TrimSpace(code), strings.TrimSpace(email)
	if code == "" {
		return invalid("code", "reset code is required")
	}
	if email == "" {
		return invalid("email", "email is required")
	}
	if err := checkPassword("newPassword", newPassword); err != nil {
		return err
	}

	err := a.client.ResetPassword(ctx, models.ResetPasswordRequest{
		Code:            code,
		NewPassword:     newPassword,
		ConfirmPassword: newPassword,
		Email:           email,
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (*models.Identity, error) {
	return a.session.Current(ctx)
}

func (a *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	return a.session.IsValid(ctx)
}

func (a *authService) HasRole(ctx context.Context, role string) (bool, error) {
	identity, err := a.session.Current(ctx)
	if err != nil || identity == nil {
		return false, err
	}
	return identity.HasRole(role), nil
}

func (a *authService) CheckAccess(ctx context.Context, admin bool) (string, error) {
	return a.client.CheckAccess(ctx, admin)
}
