package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

// Profile shows the current user's profile; "profile edit" changes it.
func (a *App) Profile(ctx context.Context, args []string) error {
	p, err := a.users.GetProfile(ctx)
	if err != nil {
		return err
	}

	if len(args) == 0 || !strings.EqualFold(args[0], "edit") {
		printUser(a, *p)
		return nil
	}

	update := models.ProfileUpdate{Username: p.Username, Email: p.Email, AvatarURL: p.AvatarURL}
	fields := []struct {
		label string
		dst   *string
	}{
		{"Username", &update.Username},
		{"Email", &update.Email},
		{"Photo URL", &update.AvatarURL},
	}
	for _, f := range fields {
		v, err := a.ask(fmt.Sprintf("%s [%s]", f.label, *f.dst))
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	err = a.busy.Do(ctx, "profile", func(ctx context.Context) error {
		return a.users.UpdateProfile(ctx, update)
	})
	if err != nil {
		return err
	}

	a.println("Profile updated.")
	if update.Username != p.Username {
		a.println("Log in again for the new username to show up.")
	}
	return nil
}

func printUser(a *App, u models.User) {
	a.printf("Username: %s\n", u.Username)
	a.printf("Email:    %s\n", u.Email)
	if len(u.Roles) > 0 {
		a.printf("Roles:    %s\n", strings.Join(u.Roles, ", "))
	}
	if u.AvatarURL != "" {
		a.printf("Photo:    %s\n", u.AvatarURL)
	}
}

// Passwd changes the current user's password.
func (a *App) Passwd(ctx context.Context, _ []string) error {
	current, err := a.askPassword("Current password")
	if err != nil {
		return err
	}
	next, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	confirm, err := a.askPassword("Confirm new password")
	if err != nil {
		return err
	}
	if next != confirm {
		return errors.New("passwords do not match")
	}

	err = a.busy.Do(ctx, "passwd", func(ctx context.Context) error {
		return a.users.ChangePassword(ctx, current, next)
	})
	if err != nil {
		return err
	}
	a.println("Password changed.")
	return nil
}

// Users lists all accounts (admin only); "users delete <id>" removes one.
func (a *App) Users(ctx context.Context, args []string) error {
	if len(args) >= 1 && strings.EqualFold(args[0], "delete") {
		if len(args) < 2 {
			return errors.New("usage: users delete <id>")
		}
		id := models.ID(args[1])
		sure, err := getYesNo(a.reader, fmt.Sprintf("Delete user %s?", id), a.out)
		if err != nil || !sure {
			return err
		}
		if err := a.users.DeleteUser(ctx, id); err != nil {
			return err
		}
		a.printf("User %s deleted.\n", id)
		return nil
	}

	users, err := a.users.GetUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		a.printf("%-38s %-20s %-30s %s\n", u.ID, u.Username, u.Email, strings.Join(u.Roles, ","))
	}
	a.println(plural(len(users), "user", "users"))
	return nil
}
