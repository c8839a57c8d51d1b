// Package observability provides the logging stack for the backend: a
// zap factory driven by LoggingConfig and per-request child loggers used
// by the HTTP layer.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crystalfall/rpgserver/internal/config"
)

// Defaults applied when the logging section is left empty, matching the
// development configuration shipped in configs/dev.yaml.
const (
	DefaultLevel  = "info"
	DefaultFormat = "console"
)

// NewLogger creates a structured logger from the given logging configuration.
// An empty level or format falls back to the package defaults.
//
// Precondition: cfg.Level must be empty or one of "debug", "info", "warn",
// "error".
// Precondition: cfg.Format must be empty, "json", or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = DefaultLevel
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// WithRequestID returns a child logger that stamps every line with the
// request id, so one request's log lines correlate across handlers.
func WithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	return logger.With(zap.String("request_id", requestID))
}
