package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupClaudeDesktopKeepsExistingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	existing := `{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {
    "other": {"command": "/usr/bin/other", "args": ["serve"]}
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	require.NoError(t, setupClaudeDesktop(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got struct {
		GlobalShortcut string                     `json:"globalShortcut"`
		MCPServers     map[string]MCPServerConfig `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Ctrl+Space", got.GlobalShortcut)
	assert.Equal(t, []string{"serve"}, got.MCPServers["other"].Args)

	server, ok := got.MCPServers["ytscribe"]
	require.True(t, ok)
	assert.Equal(t, []string{"mcp"}, server.Args)
	assert.NotEmpty(t, server.Command)
	assert.Contains(t, server.Env, "XDG_CONFIG_HOME")
}

func TestSetupClaudeDesktopMissingConfig(t *testing.T) {
	err := setupClaudeDesktop(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")
}

func TestAvailableCommands(t *testing.T) {
	names := availableCommands(rootCmd)
	for _, want := range []string{"transcribe", "playlist", "resolve", "show", "cp", "mcp", "paths", "version"} {
		assert.Contains(t, names, want)
	}
}
