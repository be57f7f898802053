package models

import "time"

// MonitorInfo is the persisted view of one monitored run.
type MonitorInfo struct {
	RunID          int64      `yaml:"run_id"`
	System         string     `yaml:"system"`
	ConsoleLog     string     `yaml:"console_log"`
	CachedLog      string     `yaml:"cached_log"`
	Offset         int64      `yaml:"offset"`
	Registered     bool       `yaml:"registered"`
	PanicSignature string     `yaml:"panic_signature,omitempty"`
	PanicReported  bool       `yaml:"panic_reported"`
	CacheWithdrawn bool       `yaml:"cache_withdrawn"`
	StartedAt      time.Time  `yaml:"started_at"`
	LastPollAt     *time.Time `yaml:"last_poll_at,omitempty"`
}

// MonitorState lists the runs the daemon is currently watching.
// This corresponds to ~/.labwatch/monitors.yaml.
type MonitorState struct {
	Version  int           `yaml:"version"`
	Monitors []MonitorInfo `yaml:"monitors"`
}

// NewMonitorState creates an empty monitor state.
func NewMonitorState() *MonitorState {
	return &MonitorState{
		Version:  1,
		Monitors: []MonitorInfo{},
	}
}
