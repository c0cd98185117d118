package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the diagnostic logger.
// In MCP mode stdout carries the protocol, so logs go to a file in the cache
// directory when enabled and are dropped otherwise.
func NewLogger(config *Config, mcpMode bool) (*zap.Logger, error) {
	if mcpMode {
		if !config.MCPLogEnabled {
			return zap.NewNop(), nil
		}
		return newFileLogger(filepath.Join(config.CacheDir, "mcp.log"))
	}

	if !config.Verbose {
		return zap.NewNop(), nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// newFileLogger appends JSON log lines to path
func newFileLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return logger.With(zap.String("component", "mcp")), nil
}
