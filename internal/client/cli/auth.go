package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// Register creates an account and logs in with it.
//
//	register [-n name] [email]
//
// Missing values are prompted for; the password is always read from the
// terminal without echo.
func (a *App) Register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("n", "", "display name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: register [-n name] [email]: %w", err)
	}

	interactive := fs.NArg() == 0
	email := fs.Arg(0)
	if interactive {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
		if *name == "" {
			if *name, err = getSimpleText(a.reader, "Enter name (optional)", a.out); err != nil {
				return err
			}
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var namePtr *string
	if n := strings.TrimSpace(*name); n != "" {
		namePtr = &n
	}

	tok, err := a.client.Register(ctx, email, namePtr, password)
	if err != nil {
		return err
	}
	if err := a.remember(ctx, tok.AccessToken, email); err != nil {
		return err
	}

	a.printf("Registered and logged in as %s\n", email)
	return nil
}

// Login exchanges credentials for an access token and caches it.
//
//	login [email]
func (a *App) Login(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	tok, err := a.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.remember(ctx, tok.AccessToken, email); err != nil {
		return err
	}

	a.printf("Logged in as %s\n", email)
	return nil
}

// Logout drops the cached token. It succeeds even when not logged in.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.forget(ctx)
	a.printf("Logged out\n")
	return nil
}

// Me prints the profile behind the cached token.
func (a *App) Me(ctx context.Context, _ []string) error {
	return a.guarded(ctx, func() error {
		u, err := a.client.Me(ctx)
		if err != nil {
			return err
		}
		a.email = u.Email
		printUser(a.out, u)
		return nil
	})
}

// Health asks the server whether it is up.
func (a *App) Health(ctx context.Context, _ []string) error {
	if err := a.client.Health(ctx); err != nil {
		return err
	}
	a.printf("Server is healthy\n")
	return nil
}
