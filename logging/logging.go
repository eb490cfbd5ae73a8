// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"friendsmarket/setup"
)

// New creates a slog.Logger writing JSON to stdout and a rotating log file.
func New(cfg *setup.Config) *slog.Logger {
	level := parseLevel(cfg.Server.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	logDir := filepath.Dir(cfg.Server.LogFile)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		// Fall back to stderr only if the log directory cannot be created.
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	fileLogger := &lumberjack.Logger{
		Filename:   cfg.Server.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	writer := io.MultiWriter(os.Stdout, fileLogger)
	return slog.New(slog.NewJSONHandler(writer, opts))
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
