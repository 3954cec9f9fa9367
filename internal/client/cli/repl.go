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

const usage = `Commands:
  register [-n name] [email]            create an account and log in
  login [email]                         log in and cache the access token
  logout                                forget the cached token
  me                                    show the current user
  list [-done | -pending]               list tasks
  add [-d description] [-done] [title]  create a task
  show <id>                             show one task
  update <id> [-t title] [-d description] [-clear] [-done | -pending]
  toggle <id>                           flip completed
  delete [-y] <id>                      delete a task
  health                                check the server
  help                                  show this help
  exit | quit                           leave the interactive mode`

// execIface is the command surface the dispatcher needs. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Me(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Toggle(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Health(ctx context.Context, args []string) error
}

func isHelp(cmd string) bool {
	return cmd == "help" || cmd == "-h" || cmd == "--help"
}

// dispatch routes cmd to its handler.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx, args)
	case "login":
		return a.Login(ctx, args)
	case "logout":
		return a.Logout(ctx, args)
	case "me", "whoami":
		return a.Me(ctx, args)
	case "l", "ls", "list":
		return a.List(ctx, args)
	case "add", "new":
		return a.Add(ctx, args)
	case "show", "get":
		return a.Show(ctx, args)
	case "update", "edit":
		return a.Update(ctx, args)
	case "toggle":
		return a.Toggle(ctx, args)
	case "delete", "rm":
		return a.Delete(ctx, args)
	case "health":
		return a.Health(ctx, args)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// runREPL reads one command per line from reader until EOF, "exit" or
// "quit", or until ctx is cancelled. Errors are reported and the loop
// carries on.
//
// The reader is shared with the prompts commands print, so a command that
// asks for more input consumes the following lines.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("tk (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch {
		case isHelp(cmd):
			if a.isLoggedIn() {
				printlnFn(usage)
			} else {
				printlnFn("Available commands: register, login, health, help, exit")
			}
		case cmd == "exit" || cmd == "quit":
			printlnFn("Bye!")
			return
		default:
			if err := dispatch(ctx, a, cmd, parts[1:]); err != nil {
				printlnFn("Error:", describe(err))
			}
		}
	}
}
