package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the TaskKeeper CLI.
type Config struct {
	ServerURL      string        `env:"SERVER_URL"`
	TokenFile      string        `env:"TOKEN_FILE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with defaults for a local development server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.TokenFile = defaultTokenFile()
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".taskkeeper", "token")
	}
	return filepath.Join(home, ".taskkeeper", "token")
}

// LoadConfig constructs a Config from defaults, the environment, an optional
// JSON file and the given command-line flags, in that order of precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
