// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/bellhop/internal/config"
)

// New builds a logger from the log section of the config.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapConfig.Level.SetLevel(level)
	}

	// CLI output goes to stdout; keep logs off it.
	zapConfig.OutputPaths = []string{"stderr"}

	return zapConfig.Build()
}

// Install builds a logger and makes it the zap global so packages without
// an injected logger (db migrations) log consistently.
func Install(cfg config.LogConfig) (*zap.Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Request returns the standard fields identifying a request.
func Request(tenantID, requestID string) []zap.Field {
	return []zap.Field{zap.String("tenant_id", tenantID), zap.String("request_id", requestID)}
}
