// Package cli implements the taskkeeper command-line client.
//
// Invoked with a command ("taskkeeper list", "taskkeeper add milk") it runs
// that command once. Without one it starts an interactive loop reading one
// command per line. Both paths share the same dispatcher, so every command
// works the same way in either mode.
//
// The access token obtained by register or login is cached in a file (see
// package session) and reused until logout or until the server rejects it.
package cli
