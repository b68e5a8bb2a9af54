package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

// UserService covers profile and account administration. It never touches
// the session: a renamed user keeps the identity of the current token until
// the next login or refresh.
type UserService interface {
	UpdateProfile(ctx context.Context, in models.ProfileUpdate) error
	GetProfile(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, current, next string) error
	GetUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id models.ID) error
}

type userService struct {
	client client.Client
}

func NewUserService(c client.Client) UserService {
	return &userService{client: c}
}

func (s *userService) UpdateProfile(ctx context.Context, in models.ProfileUpdate) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)

	if in.Username == "" {
		return invalid("username", "username is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email", "email is not valid")
	}
	if err := s.client.UpdateUser(ctx, in); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context) (*models.User, error) {
	u, err := s.client.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" {
		return invalid("currentPassword", "current password is required")
	}
	if err := checkPassword("newPassword", next); err != nil {
		return err
	}
	if current == next {
		return invalid("newPassword", "new password must differ from the current one")
	}

	err := s.client.ChangePassword(ctx, models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
		ConfirmPassword: next,
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *userService) GetUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.client.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, id models.ID) error {
	if blank(id.String()) {
		return invalid("id", "user id is required")
	}
	if err := s.client.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
