package config

import (
	"github.com/watchfire-io/labwatch/internal/models"
)

// LoadMonitorState loads ~/.labwatch/monitors.yaml, returning an empty
// state if the daemon has never written one.
func LoadMonitorState() (*models.MonitorState, error) {
	path, err := GlobalMonitorsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewMonitorState)
}

// SaveMonitorState writes ~/.labwatch/monitors.yaml.
func SaveMonitorState(state *models.MonitorState) error {
	path, err := GlobalMonitorsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, state)
}

// RemoveMonitorState removes ~/.labwatch/monitors.yaml.
func RemoveMonitorState() error {
	path, err := GlobalMonitorsFile()
	if err != nil {
		return err
	}
	return RemoveIfExists(path)
}
