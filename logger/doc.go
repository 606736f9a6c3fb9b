// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logger configures the process-wide slog logger.
//
//	logger.Init(cfg.Log)
//	slog.Info("vote recorded", "day", day, "hour", hour)
package logger
