// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

import "fmt"

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Short returns the version and codename, e.g. "1.2.0 (Sentry)".
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Codename)
}
