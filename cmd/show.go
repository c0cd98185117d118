package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytscribe/internal"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [CSV file]",
	Short: "Show a playlist export",
	Example: `  # List the videos of an export
  ytscribe show "My Playlist_transcriptions.csv"

  # Print every transcript in full
  ytscribe show "My Playlist_transcriptions.csv" --full`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := internal.LoadExport(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		full, _ := cmd.Flags().GetBool("full")
		if !full {
			width, _ := cmd.Flags().GetInt("width")
			fmt.Println(internal.RenderRecordsTable(records, width))
			return nil
		}

		format, _ := cmd.Flags().GetString("format")
		formatter, err := internal.NewRecordFormatter(format)
		if err != nil {
			return err
		}
		for i := range records {
			if err := internal.WriteRecord(os.Stdout, formatter, &records[i]); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("full", false, "Print every record instead of a table")
	showCmd.Flags().Int("width", 60, "Maximum characters of content shown in the table")
	showCmd.Flags().String("format", "", "Record template used with --full")
	rootCmd.AddCommand(showCmd)
}
