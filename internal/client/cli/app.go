package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/client/services"
	"github.com/dmitrijs2005/dktlearn/internal/logging"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
	getYesNo      = GetYesNo
)

// Deps are the services an App drives.
type Deps struct {
	Auth      services.AuthService
	Community services.CommunityService
	Users     services.UserService
	Logger    logging.Logger
	In        io.Reader
	Out       io.Writer
}

type App struct {
	auth   services.AuthService
	users  services.UserService
	feed   *services.Feed
	busy   *services.Affordances
	logger logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	identity *models.Identity
}

func NewApp(d Deps) *App {
	a := &App{
		auth:   d.Auth,
		users:  d.Users,
		feed:   services.NewFeed(d.Community),
		busy:   services.NewAffordances(),
		logger: d.Logger,
		reader: bufio.NewReader(d.In),
		out:    d.Out,
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}
	if d.In == nil {
		a.reader = bufio.NewReader(os.Stdin)
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	return a
}

// Run restores a stored session, then runs the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}

	a.println("Welcome to DKT Learn CLI (type 'help' for commands)")
	if id := a.current(); id != nil {
		a.println("Logged in as " + id.Username)
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// restore picks up the session left by a previous run. A session past its
// deadline is dropped by IsAuthenticated.
func (a *App) restore(ctx context.Context) error {
	if _, err := a.auth.IsAuthenticated(ctx); err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	id, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	a.setIdentity(id)
	return nil
}

// SessionExpired is the hook the HTTP client calls after it cleared a
// session it could not renew.
func (a *App) SessionExpired(ctx context.Context) {
	if a.current() == nil {
		return
	}
	a.setIdentity(nil)
	a.logger.Info(ctx, "session expired")
	a.println("Your session has expired, please log in again.")
}

func (a *App) setIdentity(id *models.Identity) {
	a.mu.Lock()
	a.identity = id
	a.mu.Unlock()

	if id != nil {
		a.feed.SetViewer(id.Username)
	} else {
		a.feed.SetViewer("")
	}
}

func (a *App) current() *models.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

func (a *App) isLoggedIn() bool {
	return a.current() != nil
}

func (a *App) status() string {
	if id := a.current(); id != nil {
		return "(" + id.Username + ")"
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) askPassword(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
