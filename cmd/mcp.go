package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for ytscribe",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytscribe functionality as tools.

The MCP server provides three tools:
- resolve_youtube: Title, duration and audio stream of a video, or the videos of a playlist
- transcribe_youtube_video: Transcribe one video (paid)
- transcribe_youtube_playlist: Transcribe a playlist and export a CSV (paid, per video)

This allows AI assistants to use ytscribe capabilities through the MCP protocol.
Set mcp_log_enabled = true in config.toml to log tool calls to the cache directory.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  ytscribe mcp

  # Run MCP server with HTTP transport on port 8080
  ytscribe mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  ytscribe mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP uses stdio protocol, so keep the terminal UI silent
		config.Verbose = false
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app := newApp(cmd)

		mcpServer := internal.NewMCPServer(app, buildVersion())

		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting ytscribe MCP server on HTTP port %d...\n", port)
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

// setupClaudeCmd represents the setup-claude subcommand
var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Configure Claude Desktop to use the ytscribe MCP server",
	Long: `Automatically configure Claude Desktop to use ytscribe as an MCP server.

This command will:
- Detect Claude Desktop installation and config location
- Add the ytscribe MCP server configuration to claude_desktop_config.json
- Preserve existing MCP server configurations
- Set appropriate XDG environment variables for the current platform`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := getClaudeDesktopConfigPath()
		if err != nil {
			return fmt.Errorf("getting Claude Desktop config path: %w", err)
		}
		return setupClaudeDesktop(configPath)
	},
}

// MCPServerConfig represents an individual MCP server configuration
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// setupClaudeDesktop adds the ytscribe server to the Claude Desktop config at configPath.
// Other settings and servers in the file are kept as they are.
func setupClaudeDesktop(configPath string) error {
	// Get the path to the current binary
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	// Check if config file exists - abort if it doesn't
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config for Claude Desktop not found at %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	desktopConfig := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &desktopConfig); err != nil {
		return fmt.Errorf("parsing existing config: %w", err)
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := desktopConfig["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
	}

	// Get XDG base paths so the server finds the same config and cache
	entry, err := json.Marshal(MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env: map[string]string{
			"XDG_DATA_HOME":   xdg.DataHome,
			"XDG_CONFIG_HOME": xdg.ConfigHome,
			"XDG_CACHE_HOME":  xdg.CacheHome,
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling server config: %w", err)
	}
	servers["ytscribe"] = entry

	if desktopConfig["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}

	// Write updated config back to file
	data, err = json.MarshalIndent(desktopConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Successfully configured Claude Desktop MCP server\n")
	fmt.Printf("Restart Claude Desktop to use the ytscribe MCP server\n")

	return nil
}

// getClaudeDesktopConfigPath returns the platform-specific config path for Claude Desktop
func getClaudeDesktopConfigPath() (string, error) {
	var configPath string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, "Library", "Application Support", "Claude", "claude_desktop_config.json")

	case "windows":
		// Windows: %APPDATA%/Claude/claude_desktop_config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configPath = filepath.Join(appData, "Claude", "claude_desktop_config.json")

	case "linux":
		// Linux: ~/.config/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, ".config", "Claude", "claude_desktop_config.json")

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return configPath, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
