package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/client/services"
	"github.com/dmitrijs2005/dktlearn/internal/common"
)

// Register prompts for the sign-up form and creates the account. It does not
// log in.
func (a *App) Register(ctx context.Context, _ []string) error {
	var req models.RegisterRequest
	var err error

	if req.Username, err = a.ask("Username"); err != nil {
		return err
	}
	if req.Email, err = a.ask("Email"); err != nil {
		return err
	}
	if req.Password, err = a.askPassword("Password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = a.askPassword("Confirm password"); err != nil {
		return err
	}
	if req.IsProfessor, err = getYesNo(a.reader, "Register as professor?", a.out); err != nil {
		return err
	}
	if req.IsProfessor {
		code, err := a.ask("Invite code")
		if err != nil {
			return err
		}
		req.InviteCode = &code
	}

	err = a.busy.Do(ctx, "register", func(ctx context.Context) error {
		return a.auth.Register(ctx, req)
	})
	if err != nil {
		return err
	}

	a.println("Account created. You can now log in.")
	return nil
}

// Login prompts for credentials and starts a session. The login may be given
// as the first argument.
func (a *App) Login(ctx context.Context, args []string) error {
	if a.isLoggedIn() {
		a.println("Already logged in as " + a.current().Username + ". Log out first.")
		return nil
	}

	var login string
	if len(args) > 0 {
		login = args[0]
	} else {
		var err error
		if login, err = a.ask("Username or email"); err != nil {
			return err
		}
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	var id *models.Identity
	err = a.busy.Do(ctx, "login", func(ctx context.Context) error {
		id, err = a.auth.Login(ctx, login, string(password), remember)
		return err
	})
	if err != nil {
		return err
	}

	if id == nil {
		// the token carried no readable claims; fall back to what was typed
		id = &models.Identity{Username: login}
	}
	a.setIdentity(id)
	a.printf("Welcome, %s!\n", id.Username)
	return nil
}

// Logout ends the session. The local session is gone even when the server
// could not be told.
func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.auth.Logout(ctx)
	a.setIdentity(nil)
	if err != nil && !errors.Is(err, common.ErrNotLoggedIn) {
		a.println("Logged out locally.")
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context, _ []string) error {
	id, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		a.setIdentity(nil)
		return common.ErrNotLoggedIn
	}

	a.printf("Username: %s\n", id.Username)
	if id.Email != "" {
		a.printf("Email:    %s\n", id.Email)
	}
	if len(id.Roles) > 0 {
		a.printf("Roles:    %s\n", strings.Join(id.Roles, ", "))
	}
	return nil
}

// Forgot walks through the password reset: request a code, then submit it
// with a new password. A rejected submission can be retried right away.
func (a *App) Forgot(ctx context.Context, _ []string) error {
	reset := services.NewPasswordReset(a.auth)

	email, err := a.ask("Email of the account")
	if err != nil {
		return err
	}
	if err := reset.Request(ctx, email); err != nil {
		return err
	}
	a.println("A reset code was sent to " + reset.Email() + ".")

	for {
		code, err := a.ask("Reset code")
		if err != nil {
			return err
		}
		pw, err := a.askPassword("New password")
		if err != nil {
			return err
		}
		confirm, err := a.askPassword("Confirm new password")
		if err != nil {
			return err
		}

		err = reset.Submit(ctx, code, pw, confirm)
		if err == nil {
			a.println("Password changed. You can now log in.")
			return nil
		}

		var rerr *services.ResetError
		if !errors.As(err, &rerr) || rerr.Reason == services.ReasonOther {
			return err
		}
		a.printf("Error: %s\n", userMessage(err))
		if rerr.Reason == services.ReasonInvalidCode {
			a.println("Check the code, or run 'forgot' again for a new one.")
		}
		if rerr.Reason == services.ReasonEmailNotFound {
			return nil
		}

		again, err := getYesNo(a.reader, "Try again?", a.out)
		if err != nil || !again {
			return err
		}
	}
}

// Access probes the authenticated endpoint, or with "admin" the admin one.
func (a *App) Access(ctx context.Context, args []string) error {
	admin := len(args) > 0 && strings.EqualFold(args[0], "admin")
	msg, err := a.auth.CheckAccess(ctx, admin)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "access granted"
	}
	a.println(msg)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
