package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rtzll/ytscribe/internal"
)

var (
	config *internal.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytscribe [YouTube URL or ID]",
	Short: "Transcribe YouTube videos and playlists with Whisper",
	Long: `ytscribe transcribes YouTube videos and playlists.

It resolves the audio stream of each video with yt-dlp and sends it to a
hosted Whisper model (Replicate by default, or OpenAI). A playlist is
processed one video at a time and exported to "<title>_transcriptions.csv".

Transcription costs money: every video is one billed call.`,
	Example: `  # Transcribe a video (auto-detects videos and playlists)
  ytscribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytscribe tAP1eZYEuKA

  # Transcribe a playlist, skipping videos that fail
  ytscribe "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf" --continue-on-error

  # Use a bigger model and another language
  ytscribe tAP1eZYEuKA --model-size medium --language de

  # Use OpenAI instead of Replicate
  ytscribe tAP1eZYEuKA --backend openai`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed := internal.ParseInput(args[0])

		switch parsed.ContentType {
		case internal.ContentTypeCommand:
			return fmt.Errorf("%w, %s", parsed.Error, parsed.SuggestCorrection(availableCommands(cmd.Root())))
		case internal.ContentTypePlaylist:
			return runPlaylist(cmd, args[0])
		case internal.ContentTypeVideo:
			record, err := transcribeArg(cmd, args[0])
			if err != nil {
				return err
			}
			return writeRecord(cmd, record)
		}
		return parsed.Error
	},
}

// setup loads the configuration and the logger for every command
func setup(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	config = internal.InitConfig(configFile)

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		return fmt.Errorf("creating XDG directories: %w", err)
	}

	// Ensure default config exists in XDG config directory
	if configFile == "" {
		if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
		}
	}

	if err := internal.HandleVerboseFlag(cmd, config); err != nil {
		return err
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		config.Quiet = true
	}

	l, err := internal.NewLogger(config, cmd.Name() == "mcp")
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// availableCommands lists the subcommand names for typo suggestions
func availableCommands(root *cobra.Command) []string {
	var names []string
	for _, c := range root.Commands() {
		if !c.Hidden {
			names = append(names, c.Name())
		}
	}
	return names
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = logger.Sync() }()

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Handle shutdown signal in a separate goroutine
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")

		// Cancel the main context to signal all operations to stop
		cancel()

		if config == nil {
			os.Exit(130)
		}

		// Create a context with timeout for cleanup operations
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		// Run cleanup with timeout context
		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		// Wait for either cleanup to complete or timeout
		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		_ = logger.Sync()
		os.Exit(130)
	}()

	// Set context on root command
	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddTranscriptionFlags(rootCmd)
	internal.AddPlaylistFlags(rootCmd)
	internal.AddOutputFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress and status output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/ytscribe/config.toml)")
}
