// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for Aleutian components.
//
// The package is a thin layer on the standard library slog package. It
// exists so every service configures logging the same way: a Config is
// resolved from the environment, a handler is built from it, and the
// result is installed as the process-wide slog default. Handlers emit
// JSON in deployment and human-readable text during development.
//
// # Basic Usage
//
//	logging.Init(logging.FromEnv("review-agent"))
//	slog.Info("analysis stored", "pr_id", prID)
//
// # Log Levels
//
// Levels follow slog conventions: Debug for development tracing, Info
// for normal operations, Warn for recoverable degradation, Error for
// failed operations the service survives.
//
// # Security Considerations
//
// Nothing here redacts sensitive data. Callers must not log tokens or
// secrets; log their presence instead:
//
//	slog.Info("github fetch", "token_present", token != "")
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// =============================================================================
// Configuration
// =============================================================================

// Config configures the logger built by New.
//
// A zero-value Config yields an Info-level JSON logger on stderr.
//
// # Fields
//
//   - Service: service name stamped on every record. Empty omits the attr.
//   - Level: minimum severity to emit.
//   - Text: emit human-readable text instead of JSON.
//   - Output: destination writer. Nil means stderr.
type Config struct {
	Service string
	Level   slog.Level
	Text    bool
	Output  io.Writer
}

// FromEnv builds a Config for a service from the environment.
//
// LOG_LEVEL selects the minimum severity (debug, info, warn, error;
// default info). LOG_FORMAT=text switches to the development format.
func FromEnv(service string) Config {
	return Config{
		Service: service,
		Level:   parseLevel(os.Getenv("LOG_LEVEL")),
		Text:    strings.EqualFold(os.Getenv("LOG_FORMAT"), "text"),
	}
}

// parseLevel maps a level name to a slog.Level, defaulting to Info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Construction
// =============================================================================

// New builds a slog.Logger from the Config.
//
// # Description
//
// The handler writes JSON records unless Config.Text is set. When
// Config.Service is non-empty every record carries a "service" attr,
// which is what the log pipeline groups on.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Text {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

// Init builds a logger from the Config and installs it as the slog
// default, so package-level slog calls across the service share one
// configuration. Returns the installed logger.
func Init(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}
