package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Transcribe a single YouTube video",
	Example: `  # Print the transcript of a video
  ytscribe transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytscribe transcribe tAP1eZYEuKA

  # Save the record as JSON
  ytscribe transcribe tAP1eZYEuKA --json -o transcript.json

  # Custom output template
  ytscribe transcribe tAP1eZYEuKA --format "{{.Title}} ({{.URL}}): {{.Content}}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := transcribeArg(cmd, args[0])
		if err != nil {
			return err
		}
		return writeRecord(cmd, record)
	},
}

func init() {
	internal.AddTranscriptionFlags(transcribeCmd)
	internal.AddOutputFlags(transcribeCmd)
	rootCmd.AddCommand(transcribeCmd)
}
