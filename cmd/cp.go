package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Transcribe a video and copy the transcript to the clipboard",
	Example: `  # Copy the transcript of a video
  ytscribe cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytscribe cp tAP1eZYEuKA`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := transcribeArg(cmd, args[0])
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(record.Content); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Fprintf(os.Stderr, "Transcript of %q copied to clipboard\n", record.Title)
		}

		return nil
	},
}

func init() {
	internal.AddTranscriptionFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
