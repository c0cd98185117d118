package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // overridden at build time via -ldflags
	commit  = ""
	date    = ""
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Example: `  # Show version information
  ytscribe version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ytscribe v%s (commit: %s, built %s, %s)\n", buildVersion(), commit, date, runtime.Version())
	},
}

// buildVersion falls back to the module version for `go install` builds
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return strings.TrimPrefix(info.Main.Version, "v")
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
