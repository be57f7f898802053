package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/labwatch/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", render(styleBrand, "Labwatch"), render(styleVersion, buildinfo.Short()))
		fmt.Printf("  %s %s\n", render(styleLabel, "Commit: "), buildinfo.CommitHash)
		fmt.Printf("  %s %s\n", render(styleLabel, "Built:  "), buildinfo.BuildDate)
		fmt.Printf("  %s %s/%s\n", render(styleLabel, "OS/Arch:"), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  %s %s\n", render(styleLabel, "Go:     "), runtime.Version())
	},
}
