package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run 'login' first")
	errSessionExpired = errors.New("session expired or invalid, run 'login' again")
	errUnknownCommand = errors.New("unknown command")
	errNothingToDo    = errors.New("nothing to update")
)

type App struct {
	client   client.Client
	store    session.Store
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	loggedIn bool
	email    string
}

// NewApp wires the HTTP API client and the token file named in cfg and
// restores a previously cached token.
func NewApp(cfg *config.Config, logger logging.Logger) (*App, error) {
	c, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	a := newApp(c, session.NewFileStore(cfg.TokenFile), logger, os.Stdin, os.Stdout)
	a.restore(context.Background())
	return a, nil
}

func newApp(c client.Client, s session.Store, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		client: c,
		store:  s,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) restore(ctx context.Context) {
	token, err := a.store.Load()
	switch {
	case err == nil:
		a.client.SetToken(token)
		a.loggedIn = true
	case errors.Is(err, session.ErrNoToken):
	default:
		a.logger.Warn(ctx, "cannot read cached token", "error", err)
	}
}

func (a *App) remember(ctx context.Context, token, email string) error {
	if err := a.store.Save(token); err != nil {
		return err
	}
	a.client.SetToken(token)
	a.loggedIn = true
	a.email = email
	a.logger.Debug(ctx, "token cached")
	return nil
}

func (a *App) forget(ctx context.Context) {
	if err := a.store.Clear(); err != nil {
		a.logger.Warn(ctx, "cannot remove cached token", "error", err)
	}
	a.client.SetToken("")
	a.loggedIn = false
	a.email = ""
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

func (a *App) status() string {
	switch {
	case a.email != "":
		return a.email
	case a.loggedIn:
		return "logged in"
	default:
		return "anonymous"
	}
}

// guarded runs fn only with a cached token. A token the server refuses is
// dropped so the next command asks for a fresh login.
func (a *App) guarded(ctx context.Context, fn func() error) error {
	if !a.loggedIn {
		return errNotLoggedIn
	}
	err := fn()
	if client.IsAuthError(err) {
		a.forget(ctx)
		return errSessionExpired
	}
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Run executes args as a single command, or starts the interactive loop
// when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Welcome to TaskKeeper (type 'help' for commands)")
		runREPL(ctx, a, a.status, a.reader)
		return nil
	}

	if isHelp(args[0]) {
		printlnFn(usage)
		return nil
	}

	if err := dispatch(ctx, a, args[0], args[1:]); err != nil {
		a.logger.Debug(ctx, "command failed", "command", args[0], "error", err)
		return errors.New(describe(err))
	}
	return nil
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	if errors.Is(err, client.ErrUnavailable) {
		return "server is unavailable, try again later"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
