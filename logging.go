package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// openLogger builds the session logger. The terminal belongs to the TUI, so
// records go to a file; with no file configured they are discarded.
func openLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return discardLogger(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	return logger, f, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
