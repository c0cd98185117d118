package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [URL]",
	Short: "Resolve a video or playlist without transcribing it",
	Example: `  # Title, duration and audio stream URL of a video
  ytscribe resolve "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytscribe resolve tAP1eZYEuKA

  # Member URLs of a playlist as pretty JSON
  ytscribe resolve PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf --pretty

  # Save to file
  ytscribe resolve tAP1eZYEuKA -o video.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := newApp(cmd)
		info, err := app.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(info, "", "  ")
		} else {
			jsonData, err = json.Marshal(info)
		}
		if err != nil {
			return fmt.Errorf("error converting result to JSON: %w", err)
		}

		// Handle output flag
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	resolveCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	resolveCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(resolveCmd)
}
