package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerQuietByDefault(t *testing.T) {
	logger, err := NewLogger(&Config{}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewLoggerVerbose(t *testing.T) {
	logger, err := NewLogger(&Config{Verbose: true}, false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerMCPFile(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")

	logger, err := NewLogger(&Config{CacheDir: cacheDir}, true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel), "MCP logging is off unless enabled")

	logger, err = NewLogger(&Config{CacheDir: cacheDir, MCPLogEnabled: true, Verbose: true}, true)
	require.NoError(t, err)
	logger.Info("tool called")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(cacheDir, "mcp.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tool called"`)
	assert.Contains(t, string(data), `"component":"mcp"`)
}
