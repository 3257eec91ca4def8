// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLevel  = "FORMAE_OVH_LOG_LEVEL"
	EnvFormat = "FORMAE_OVH_LOG_FORMAT"
)

// Config selects the level and format of the plugin logger.
type Config struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
}

// ConfigFromEnv reads the logger configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		Level:  os.Getenv(EnvLevel),
		Format: os.Getenv(EnvFormat),
	}
}

// New creates a logger writing to w. The formae agent captures the plugin's
// stderr, so callers normally pass os.Stderr.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("component", "formae-plugin-ovhcloud").
		Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithResource returns ctx carrying a child logger tagged with the resource
// type of the current request. Native ids are logged by whoever learns them.
func WithResource(ctx context.Context, resourceType string) context.Context {
	logger := zerolog.Ctx(ctx).With().Str("resourceType", resourceType).Logger()
	return logger.WithContext(ctx)
}
