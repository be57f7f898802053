// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// GlobalDirName is the name of the global labwatch directory.
	GlobalDirName = ".labwatch"

	// RecipesDirName is the top-level directory of the cache mirror.
	RecipesDirName = "recipes"

	// ConsoleLogFileName is the name a console log is cached and registered under.
	ConsoleLogFileName = "console.log"

	// runShardSize is the number of run IDs sharing one cache shard directory.
	runShardSize = 1000
)

// File names
const (
	DaemonFileName   = "daemon.yaml"
	SettingsFileName = "settings.yaml"
	MonitorsFileName = "monitors.yaml"
)

// GlobalDir returns the path to the global labwatch directory (~/.labwatch/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) {
	return globalFile(DaemonFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalFile(SettingsFileName)
}

// GlobalMonitorsFile returns the path to the monitors.yaml file.
func GlobalMonitorsFile() (string, error) {
	return globalFile(MonitorsFileName)
}

func globalFile(name string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConsoleLogPath returns the path of the console log a system writes.
func ConsoleLogPath(consoleLogsDir, system string) string {
	return filepath.Join(consoleLogsDir, system)
}

// CachedConsoleLogPath returns the cache mirror path for a run's console log,
// sharded by run ID prefix: recipes/<id/1000>+/<id>/console.log.
func CachedConsoleLogPath(cacheDir string, runID int64) string {
	return filepath.Join(RunCacheDir(cacheDir, runID), ConsoleLogFileName)
}

// RunCacheDir returns the cache directory holding a run's logs.
func RunCacheDir(cacheDir string, runID int64) string {
	shard := strconv.FormatInt(runID/runShardSize, 10) + "+"
	return filepath.Join(cacheDir, RecipesDirName, shard, strconv.FormatInt(runID, 10))
}

// EnsureGlobalDir creates the global labwatch directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
