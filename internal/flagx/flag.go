// Package flagx contains helpers for reading a handful of bootstrap flags
// (config file paths) before the full flag set of a binary is parsed.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns a slice of command-line arguments that only contains
// the allowed flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// The result is never nil, so it is always safe to pass to flag.FlagSet.Parse.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" or "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// "-f value": the next token is the value unless it looks like a flag
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// stringFlag parses args for a single string flag known under a long and an
// optional short name. Everything else on the command line is ignored. When the flag
// is repeated, the last value wins.
func stringFlag(args []string, long, short, usage string) string {
	var value string

	names := []string{"-" + long}
	if short != "" {
		names = append(names, "-"+short)
	}
	args = FilterArgs(args, names)

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&value, long, "", usage)
	if short != "" {
		fs.StringVar(&value, short, "", usage+" (short)")
	}
	_ = fs.Parse(args)

	return value
}

// JsonConfigFlags returns the config file path provided via -c or -config,
// or an empty string when neither is present.
func JsonConfigFlags() string {
	return JsonConfigFlagsFrom(os.Args[1:])
}

// JsonConfigFlagsFrom is JsonConfigFlags over an explicit argument list.
func JsonConfigFlagsFrom(args []string) string {
	return stringFlag(args, "config", "c", "Path to config file")
}

// EnvFileFlags returns the dotenv file path provided via -env-file, or an
// empty string when it is absent.
func EnvFileFlags() string {
	return stringFlag(os.Args[1:], "env-file", "", "Path to .env file")
}

// SplitLeading separates the flags that precede the first positional argument
// from the rest. Every leading flag is assumed to take a value, either joined
// with '=' or as the following token.
//
//	-a http://host:8000 list -x  ->  [-a http://host:8000] [list -x]
func SplitLeading(args []string) (flags, rest []string) {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") && args[i] != "-" {
		if args[i] == "--" {
			return args[:i], args[i+1:]
		}
		if !strings.Contains(args[i], "=") && i+1 < len(args) {
			i++
		}
		i++
	}
	return args[:i], args[i:]
}
