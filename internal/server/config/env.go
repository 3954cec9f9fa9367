package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "TASKKEEPER_"

// defaultEnvFile is loaded when present; its absence is not an error.
const defaultEnvFile = ".env"

// parseEnv loads a dotenv file into the process environment and then copies
// TASKKEEPER_* variables onto config. Variables already set in the
// environment win over the dotenv file.
//
// The dotenv path comes from -env-file; without it ".env" in the working
// directory is tried. An explicit file that cannot be read, or a variable
// that cannot be parsed, panics like the JSON loader does.
func parseEnv(config *Config) {
	path := flagx.EnvFileFlags()
	if path == "" {
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	} else if err := godotenv.Load(path); err != nil {
		panic(err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
