package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     [][]string
	failWith error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(_ context.Context, args []string) error {
	return f.record("register", args)
}
func (f *fakeExec) Login(_ context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}
func (f *fakeExec) Logout(_ context.Context, args []string) error {
	f.loggedIn = false
	return f.record("logout", args)
}
func (f *fakeExec) Me(_ context.Context, args []string) error     { return f.record("me", args) }
func (f *fakeExec) List(_ context.Context, args []string) error   { return f.record("list", args) }
func (f *fakeExec) Add(_ context.Context, args []string) error    { return f.record("add", args) }
func (f *fakeExec) Show(_ context.Context, args []string) error   { return f.record("show", args) }
func (f *fakeExec) Update(_ context.Context, args []string) error { return f.record("update", args) }
func (f *fakeExec) Toggle(_ context.Context, args []string) error { return f.record("toggle", args) }
func (f *fakeExec) Delete(_ context.Context, args []string) error { return f.record("delete", args) }
func (f *fakeExec) Health(_ context.Context, args []string) error { return f.record("health", args) }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login a@example.com",
		"",
		"add buy milk",
		"ls",
		"show 123",
		"update 123 -t eggs",
		"toggle 123",
		"rm -y 123",
		"foobar",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	assert.Equal(t, []string{"login", "add", "list", "show", "update", "toggle", "delete"}, exec.calls)
	assert.Equal(t, []string{"buy", "milk"}, exec.args[1])
	assert.Equal(t, []string{"-y", "123"}, exec.args[6])

	out := strings.Join(*lines, "\n")
	assert.Contains(t, out, "tk (status)> ")
	assert.Contains(t, out, "Available commands: register, login")
	assert.Contains(t, out, "Error: unknown command: foobar")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_HelpWhenLoggedIn(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, rdr("help\nquit\n"))

	assert.Contains(t, *lines, usage)
}

func TestRunREPL_ReportsCommandErrors(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{failWith: errNotLoggedIn}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\n"))

	assert.Contains(t, *lines, "Error: "+errNotLoggedIn.Error())
}

func TestRunREPL_StopsOnEOFWithoutNewline(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("me"))

	assert.Equal(t, []string{"me"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("list\n"))

	assert.Empty(t, exec.calls)
}

func TestDispatch_Aliases(t *testing.T) {
	cases := map[string]string{
		"register": "register", "login": "login", "logout": "logout",
		"me": "me", "whoami": "me", "l": "list", "list": "list",
		"add": "add", "new": "add", "show": "show", "get": "show",
		"update": "update", "edit": "update", "toggle": "toggle",
		"delete": "delete", "rm": "delete", "health": "health",
	}
	for cmd, want := range cases {
		exec := &fakeExec{}
		require.NoError(t, dispatch(context.Background(), exec, cmd, nil))
		assert.Equal(t, []string{want}, exec.calls, cmd)
	}

	err := dispatch(context.Background(), &fakeExec{}, "nope", nil)
	assert.True(t, errors.Is(err, errUnknownCommand))
}
