// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/trev-sykes/feels-aggregate/cliparse"

	"gopkg.in/lumberjack.v2"
)

// Init installs a JSON slog handler as the default logger. Output goes to
// stdout and, when cfg.File is set, to a size-rotated file.
func Init(cfg cliparse.LogConfig) {
	slog.SetDefault(New(cfg, os.Stdout))
	slog.Info("logger initialized", "level", cfg.Level, "file", cfg.File)
}

// New builds a logger writing to console plus the optional rotating file
func New(cfg cliparse.LogConfig, console io.Writer) *slog.Logger {
	writers := []io.Writer{console}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	h := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(h)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
