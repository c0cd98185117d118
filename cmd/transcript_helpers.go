package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// newApp builds the application and makes sure yt-dlp is available
func newApp(cmd *cobra.Command) *internal.App {
	internal.InstallYtdlp(cmd.Context())
	return internal.NewApp(config, internal.WithLogger(logger))
}

// transcribeArg validates the backend and transcribes a single video argument
func transcribeArg(cmd *cobra.Command, arg string) (*internal.TranscriptionRecord, error) {
	if err := internal.ValidateTranscriptionRequirements(cmd, config); err != nil {
		return nil, err
	}

	parsed := internal.ParseInput(arg)
	switch {
	case parsed.ContentType == internal.ContentTypePlaylist:
		return nil, fmt.Errorf("'%s' is a playlist, use: %s playlist %s", arg, cmd.Root().Name(), arg)
	case !parsed.IsValid():
		return nil, parsed.Error
	}

	app := newApp(cmd)
	if config.Verbose {
		// Spinner output would interleave with debug logs
		return app.TranscribeVideo(cmd.Context(), parsed.NormalizedURL)
	}
	return app.TranscribeVideoWithStatus(cmd.Context(), parsed.NormalizedURL)
}

// writeRecord prints the record as JSON, through a template, or as rendered markdown
func writeRecord(cmd *cobra.Command, record *internal.TranscriptionRecord) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")

	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	formatter, err := internal.NewRecordFormatter(format)
	if err != nil {
		return err
	}
	return internal.WriteRecord(w, formatter, record)
}
