// Package models contains shared data structures used across the application.
package models

import "time"

// Run is a test run executing on a monitored system.
type Run struct {
	RunID       int64  `yaml:"run_id"`
	System      string `yaml:"system"` // FQDN; also the console log file name
	PanicIgnore bool   `yaml:"panic_ignore,omitempty"`
}

// RunsFile is a static list of runs served by a development catalog.
type RunsFile struct {
	Version int       `yaml:"version"`
	Runs    []RunSeed `yaml:"runs"`
}

// RunSeed describes a run to preload into a catalog.
type RunSeed struct {
	Run      `yaml:",inline"`
	Finished bool      `yaml:"finished,omitempty"`
	KillTime time.Time `yaml:"kill_time,omitempty"`
}
