// Package cli implements the labwatch CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "labwatch",
	Short: "Watch lab system consoles for kernel panics",
	Long: `Labwatch tails the serial console log of every system running a test,
mirrors it into the per-run log cache, and reports kernel panics to the catalog.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
