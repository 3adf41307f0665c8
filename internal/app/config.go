package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SchemaPaths []string // schema manifests: files or directories

	// Strict makes unknown keywords and stray tokens fatal.
	Strict         bool
	InitialSection string

	LogFormat string
	LogLevel  string
	LogFile   string // rotated log file; empty logs to the app's writer
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SchemaPaths) == 0 {
		return nil, errors.New("at least one schema path is required")
	}
	for _, p := range cfg.SchemaPaths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("schema path cannot be empty")
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	cfg.InitialSection = strings.ToUpper(strings.TrimSpace(cfg.InitialSection))
	return &cfg, nil
}
