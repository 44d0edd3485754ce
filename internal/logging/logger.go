package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvFormat = "LOG_FORMAT"
	EnvLevel  = "LOG_LEVEL"

	appName = "grc-center"
)

type Config struct {
	Format string
	Level  slog.Level
}

func DefaultConfig() Config {
	return Config{Format: "json", Level: slog.LevelInfo}
}

// LoadConfigFromEnv validates LOG_FORMAT (json|text) and LOG_LEVEL.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	switch f := strings.ToLower(strings.TrimSpace(os.Getenv(EnvFormat))); f {
	case "":
	case "json", "text":
		cfg.Format = f
	default:
		return Config{}, fmt.Errorf("%s must be one of: json, text", EnvFormat)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLevel)); raw != "" {
		if err := cfg.Level.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("%s must be one of: debug, info, warn, error", EnvLevel)
		}
	}
	return cfg, nil
}

// New builds a logger tagged with the app and the CLI command it serves.
func New(cfg Config, w io.Writer, command string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	if command == "" {
		command = appName
	}
	return slog.New(handler).With("app", appName, "command", command)
}

// Bootstrap installs the env-configured logger as the slog default.
func Bootstrap(w io.Writer, command string) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := New(cfg, w, command)
	slog.SetDefault(logger)
	return logger, nil
}

// Discard is used by tests and by callers that were given no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
