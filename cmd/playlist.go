package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// playlistCmd represents the playlist command
var playlistCmd = &cobra.Command{
	Use:   "playlist [YouTube playlist URL or ID]",
	Short: "Transcribe every video of a playlist and export a CSV",
	Long: `Transcribe the videos of a YouTube playlist one after another and write
them to "<playlist title>_transcriptions.csv" with the columns title, url
and content.

By default the first failing video aborts the run and no file is written.
With --continue-on-error failing videos are skipped and reported.`,
	Example: `  # Transcribe a playlist into the current directory
  ytscribe playlist "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf"

  # Write the CSV elsewhere and skip failing videos
  ytscribe playlist PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf -d exports --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlaylist(cmd, args[0])
	},
}

// runPlaylist transcribes a playlist, exports it and prints a summary table
func runPlaylist(cmd *cobra.Command, arg string) error {
	if err := internal.ValidateTranscriptionRequirements(cmd, config); err != nil {
		return err
	}
	if err := internal.HandlePlaylistFlags(cmd, config); err != nil {
		return err
	}

	parsed := internal.ParseInput(arg)
	if parsed.ContentType != internal.ContentTypePlaylist {
		if parsed.Error != nil {
			return parsed.Error
		}
		return fmt.Errorf("'%s' is not a playlist, use: %s transcribe %s", arg, cmd.Root().Name(), arg)
	}

	app := newApp(cmd)
	opts := app.PlaylistOptions()
	if yes, _ := cmd.Flags().GetBool("yes"); !yes && internal.IsTerminal(os.Stdin) {
		opts.Confirm = func(p *internal.PlaylistInfo) bool {
			return internal.AskUser(fmt.Sprintf("Transcribe %d videos of %q (one billed call per video)?", len(p.VideoURLs), p.Title))
		}
	}

	batch, err := app.TranscribePlaylist(cmd.Context(), parsed.NormalizedURL, opts)
	if err != nil {
		return err
	}

	if !config.Quiet {
		fmt.Println(internal.RenderRecordsTable(batch.Records, 60))
		if len(batch.Failures) > 0 {
			fmt.Fprintln(os.Stderr, internal.RenderFailuresTable(batch.Failures))
		}
	}
	fmt.Printf("Saved %d transcriptions to %s\n", batch.Len(), batch.OutputFile)
	return nil
}

func init() {
	internal.AddTranscriptionFlags(playlistCmd)
	internal.AddPlaylistFlags(playlistCmd)
	rootCmd.AddCommand(playlistCmd)
}
