package config

import (
	"github.com/twintray/twintray/internal/models"
)

// LoadSettings loads the global settings from ~/.config/twintray/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves the global settings to ~/.config/twintray/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := SettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}
