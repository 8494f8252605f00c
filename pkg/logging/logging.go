// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging options.
type Config struct {
	// Level is the minimum log level to output.
	Level slog.Level
	// JSON switches to JSON output for machine consumption.
	JSON bool
	// Output defaults to os.Stderr, keeping stdout free for converted
	// transaction data.
	Output io.Writer
}

// DefaultConfig reads LOG_LEVEL from the environment (DEBUG, INFO, WARN,
// ERROR; default INFO). verbose forces DEBUG regardless.
func DefaultConfig(verbose bool) Config {
	level := slog.LevelInfo
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		level = parseLevel(logLevel)
	}
	if verbose {
		level = slog.LevelDebug
	}

	return Config{
		Level:  level,
		Output: os.Stderr,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a logger from cfg and installs it as the slog default.
func Setup(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
