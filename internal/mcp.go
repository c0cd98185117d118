package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		appName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		logger:    app.logger.Named("mcp"),
	}

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	// resolve_youtube tool (free - metadata only)
	s.mcpServer.AddTool(mcp.NewTool("resolve_youtube",
		mcp.WithDescription("Resolve a YouTube video or playlist without transcribing it (FREE). For a video, returns title, channel, duration and the audio stream URL. For a playlist, returns its title and the ordered list of video URLs."),
		mcp.WithString("url",
			mcp.Description("YouTube video or playlist URL"),
			mcp.Required(),
		),
	), s.handleResolve)

	// transcribe_youtube_video tool (paid)
	s.mcpServer.AddTool(mcp.NewTool("transcribe_youtube_video",
		mcp.WithDescription("Transcribe one YouTube video with a hosted Whisper model (PAID). Returns the title, URL and transcribed text. Always ask user for confirmation before calling this tool."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleTranscribeVideo)

	// transcribe_youtube_playlist tool (paid - one call per video)
	s.mcpServer.AddTool(mcp.NewTool("transcribe_youtube_playlist",
		mcp.WithDescription("Transcribe every video of a YouTube playlist, one after another, and write a CSV export (PAID). Costs multiply by number of videos - use resolve_youtube first to check the playlist size and ask user for confirmation."),
		mcp.WithString("url",
			mcp.Description("YouTube playlist URL"),
			mcp.Required(),
		),
		mcp.WithBoolean("continue_on_error",
			mcp.Description("Skip failing videos instead of aborting the whole playlist"),
		),
	), s.handleTranscribePlaylist)
}

// handleResolve implements the resolve_youtube tool
func (s *MCPServer) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	s.logger.Info("resolve_youtube", zap.String("url", url))
	info, err := s.app.Resolve(ctx, url)
	if err != nil {
		s.logger.Error("resolve failed", zap.String("url", url), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("resolution error", err), nil
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
	}, nil
}

// handleTranscribeVideo implements the transcribe_youtube_video tool
func (s *MCPServer) handleTranscribeVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	s.logger.Info("transcribe_youtube_video", zap.String("url", url))
	record, err := s.app.TranscribeVideo(ctx, url)
	if err != nil {
		s.logger.Error("transcription failed", zap.String("url", url), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("failed to transcribe video", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Title: %s\n", record.Title))
	buf.WriteString(fmt.Sprintf("URL: %s\n\n", record.URL))
	buf.WriteString(record.Content)

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleTranscribePlaylist implements the transcribe_youtube_playlist tool
func (s *MCPServer) handleTranscribePlaylist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	opts := s.app.PlaylistOptions()
	if request.GetBool("continue_on_error", false) {
		opts.Policy = ContinueOnError
	}

	s.logger.Info("transcribe_youtube_playlist", zap.String("url", url), zap.String("policy", string(opts.Policy)))
	batch, err := s.app.TranscribePlaylist(ctx, url, opts)
	if err != nil {
		s.logger.Error("playlist failed", zap.String("url", url), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("failed to transcribe playlist", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", batch.Title))
	buf.WriteString(fmt.Sprintf("Exported %d transcriptions to %s\n", batch.Len(), batch.OutputFile))
	for _, f := range batch.Failures {
		buf.WriteString(fmt.Sprintf("Skipped %s\n", f.Error()))
	}
	for i, r := range batch.Records {
		buf.WriteString(fmt.Sprintf("\n---\n\nVideo %d of %d: %s\nURL: %s\n\n%s\n", i+1, batch.Len(), r.Title, r.URL, r.Content))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	s.logger.Info("starting MCP server", zap.String("transport", transport), zap.Int("port", port))

	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Start(addr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return httpServer.Shutdown(context.Background())
		}
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
