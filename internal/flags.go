package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddTranscriptionFlags adds flags related to transcription functionality
func AddTranscriptionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("backend", "b", "", "Transcription backend: replicate or openai (costs money either way)")
	cmd.Flags().StringP("language", "l", "", "Spoken language of the audio (e.g. en)")
	cmd.Flags().StringP("model-size", "s", "", "Whisper model size on Replicate (tiny, base, small, medium, large-v3, ...)")
}

// AddPlaylistFlags adds flags that control a playlist run
func AddPlaylistFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "d", "", "Directory for the CSV export (default from config, usually the current directory)")
	cmd.Flags().Bool("continue-on-error", false, "Skip videos that fail instead of aborting the whole playlist")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation before transcribing a playlist")
}

// AddOutputFlags adds flags that control how a transcription record is written
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().Bool("json", false, "Write the record as JSON")
	cmd.Flags().String("format", "", "Record template (string or file path), e.g. \"{{.Title}}: {{.Content}}\"")
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		config.Verbose = true
	}
	return nil
}

// ValidateTranscriptionRequirements applies transcription flag overrides and checks
// that the chosen backend is usable
func ValidateTranscriptionRequirements(cmd *cobra.Command, config *Config) error {
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		config.Backend = backend
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		config.Language = language
	}
	if size, _ := cmd.Flags().GetString("model-size"); size != "" {
		config.ModelSize = size
	}

	if err := ValidateAPIToken(config); err != nil {
		return err
	}

	if config.Backend == BackendReplicate {
		if err := ValidateModelSize(config.ModelSize); err != nil {
			return fmt.Errorf("invalid model size: %w", err)
		}
	}

	return nil
}

// HandlePlaylistFlags applies --output-dir and --continue-on-error to the config
func HandlePlaylistFlags(cmd *cobra.Command, config *Config) error {
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		config.OutputDir = dir
	}

	flag := cmd.Flags().Lookup("continue-on-error")
	if flag == nil || !flag.Changed {
		return nil
	}
	keepGoing, err := cmd.Flags().GetBool("continue-on-error")
	if err != nil {
		return fmt.Errorf("failed to get continue-on-error flag: %w", err)
	}
	if keepGoing {
		config.FailurePolicy = ContinueOnError
	} else {
		config.FailurePolicy = FailFast
	}
	return nil
}
