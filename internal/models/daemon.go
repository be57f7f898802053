package models

import "time"

// DaemonInfo represents the running daemon's identity.
// This corresponds to ~/.labwatch/daemon.yaml.
type DaemonInfo struct {
	Version     int       `yaml:"version"`
	PID         int       `yaml:"pid"`
	CatalogAddr string    `yaml:"catalog_addr"`
	StartedAt   time.Time `yaml:"started_at"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(catalogAddr string, pid int) *DaemonInfo {
	return &DaemonInfo{
		Version:     1,
		PID:         pid,
		CatalogAddr: catalogAddr,
		StartedAt:   time.Now().UTC(),
	}
}
