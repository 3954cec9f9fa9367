// Package config loads runtime configuration for the TaskKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. TASKKEEPER_* environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the TaskKeeper API
//	-f string   path of the cached access token
//	-t int      request timeout (seconds)
//	-l string   log level for diagnostics on stderr
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "token_file": "/home/me/.taskkeeper/token",
//	  "request_timeout": "10s",
//	  "log_level": "warn"
//	}
//
// Flags are only read from the arguments before the command name, so
// "taskkeeper -a http://host:8000 add milk" configures the server URL while
// the words after "add" belong to the command.
package config
