package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/twintray/twintray/internal/models"
)

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	want := models.NewSettings()
	want.DaemonBinary = "/opt/twingate/bin/twingate"
	want.RefreshSeconds = 45
	want.Notifications = false

	if err := SaveYAML(path, want); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	var got models.Settings
	if err := LoadYAML(path, &got); err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	if got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *want)
	}
}

func TestSaveYAMLLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	if err := SaveYAML(path, models.NewSettings()); err != nil {
		t.Fatalf("SaveYAML() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "settings.yaml" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only settings.yaml", names)
	}
}

func TestLoadYAMLOrDefault(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.yaml")
	settings, err := LoadYAMLOrDefault(missing, models.NewSettings)
	if err != nil {
		t.Fatalf("LoadYAMLOrDefault() error = %v", err)
	}
	if settings.DaemonBinary != "twingate" {
		t.Errorf("default DaemonBinary = %q, want %q", settings.DaemonBinary, "twingate")
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("daemon_binary: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadYAMLOrDefault(broken, models.NewSettings); err == nil {
		t.Error("LoadYAMLOrDefault() should fail on malformed YAML, not fall back to defaults")
	}
}

func TestSettingsSaveAndLoad(t *testing.T) {
	// os.UserConfigDir honors XDG_CONFIG_HOME on Linux.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	settings := models.NewSettings()
	settings.FetchMaxRetries = 3
	if err := SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	path, err := SettingsFile()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file missing after save: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.FetchMaxRetries != 3 {
		t.Errorf("FetchMaxRetries = %d, want 3", loaded.FetchMaxRetries)
	}
}
