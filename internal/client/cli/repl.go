package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	Forgot(ctx context.Context, args []string) error
	Access(ctx context.Context, args []string) error
	Posts(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Post(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Reply(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Passwd(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
}

type command struct {
	run       func(execIface, context.Context, []string) error
	needLogin bool
}

var commands = map[string]command{
	"register": {execIface.Register, false},
	"login":    {execIface.Login, false},
	"forgot":   {execIface.Forgot, false},
	"logout":   {execIface.Logout, true},
	"whoami":   {execIface.Whoami, true},
	"access":   {execIface.Access, true},
	"posts":    {execIface.Posts, true},
	"show":     {execIface.Show, true},
	"post":     {execIface.Post, true},
	"edit":     {execIface.Edit, true},
	"delete":   {execIface.Delete, true},
	"like":     {execIface.Like, true},
	"reply":    {execIface.Reply, true},
	"profile":  {execIface.Profile, true},
	"passwd":   {execIface.Passwd, true},
	"users":    {execIface.Users, true},
}

// runREPL starts a simple read–eval–print loop for the DKT Learn CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a' with the remaining tokens. Commands that need
// a session are refused while logged out. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Errors returned by command handlers are printed as user-facing messages;
// they never end the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dkt%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn("Available commands: posts, show <id>, post, edit <id>, delete <id>, like <id>, reply <id>, profile [edit], passwd, users [delete <id>], access [admin], whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := commands[cmd]
		switch {
		case !ok:
			printlnFn("Unknown command:", cmd)
		case c.needLogin && !a.isLoggedIn():
			printlnFn("Please log in first.")
		default:
			if err := c.run(a, ctx, args); err != nil {
				printlnFn("Error:", userMessage(err))
			}
		}
	}
}
