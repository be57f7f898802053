package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/watchfire-io/labwatch/internal/config"
)

var cacheConfigPath string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the console log cache",
}

var cacheLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List cached console logs",
	RunE:    runCacheLs,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheConfigPath, "config", "", "Settings file with cache_dir")
	cacheCmd.AddCommand(cacheLsCmd)
}

// CachedLog is a console log found in the cache.
type CachedLog struct {
	RunID int64
	Path  string // relative to the cache directory
	Size  int64
}

func runCacheLs(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(cacheConfigPath)
	if err != nil {
		return err
	}

	logs, err := listCachedLogs(os.DirFS(settings.CacheDir))
	if err != nil {
		return fmt.Errorf("failed to list cache %s: %w", settings.CacheDir, err)
	}
	if len(logs) == 0 {
		fmt.Println("No cached console logs.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSIZE\tPATH")
	for _, l := range logs {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", l.RunID, l.Size, l.Path)
	}
	return tw.Flush()
}

// listCachedLogs finds recipes/<shard>/<run>/console.log files in fsys,
// ordered by run ID. Directories whose name is not a run ID are skipped.
func listCachedLogs(fsys fs.FS) ([]CachedLog, error) {
	pattern := path.Join(config.RecipesDirName, "*", "*", config.ConsoleLogFileName)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	logs := make([]CachedLog, 0, len(matches))
	for _, m := range matches {
		runID, err := strconv.ParseInt(path.Base(path.Dir(m)), 10, 64)
		if err != nil {
			continue
		}
		info, err := fs.Stat(fsys, m)
		if err != nil {
			continue
		}
		logs = append(logs, CachedLog{RunID: runID, Path: m, Size: info.Size()})
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].RunID < logs[j].RunID })
	return logs, nil
}
