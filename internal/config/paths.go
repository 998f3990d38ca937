// Package config handles configuration loading, saving, and path
// management.
package config

import (
	"os"
	"path/filepath"
)

// ConfigDirName is the application directory under the user config root.
const ConfigDirName = "twintray"

// SettingsFileName is the settings file within the config directory.
const SettingsFileName = "settings.yaml"

// Dir returns the path to the twintray config directory
// (~/.config/twintray on Linux).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, ConfigDirName), nil
}

// SettingsFile returns the path to the settings.yaml file.
func SettingsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// EnsureDir creates the config directory if it doesn't exist.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
