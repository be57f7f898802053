package config

import (
	"fmt"

	"github.com/watchfire-io/labwatch/internal/models"
)

// LoadSettings loads settings from path, or from ~/.labwatch/settings.yaml
// when path is empty. Missing files and fields fall back to defaults.
func LoadSettings(path string) (*models.Settings, error) {
	if path == "" {
		var err error
		path, err = GlobalSettingsFile()
		if err != nil {
			return nil, err
		}
	}
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings saves settings to ~/.labwatch/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// LoadRunsFile loads a static run list for a development catalog.
func LoadRunsFile(path string) (*models.RunsFile, error) {
	var runs models.RunsFile
	if err := LoadYAML(path, &runs); err != nil {
		return nil, err
	}
	return &runs, nil
}
