package models

import "time"

// Settings represents global application settings.
// This corresponds to ~/.config/twintray/settings.yaml.
type Settings struct {
	Version int `yaml:"version"`

	// DaemonBinary is the Twingate daemon CLI.
	DaemonBinary string `yaml:"daemon_binary"`
	// NotifierBinary produces the JSON resource listing.
	NotifierBinary string `yaml:"notifier_binary"`
	// ElevateBinary wraps commands that need elevated rights.
	ElevateBinary string `yaml:"elevate_binary"`
	// RunDir is the daemon's runtime directory, watched for socket
	// creation and removal.
	RunDir string `yaml:"run_dir"`

	RefreshSeconds     int  `yaml:"refresh_seconds"`
	FetchMaxRetries    int  `yaml:"fetch_max_retries"`
	AuthTimeoutSeconds int  `yaml:"auth_timeout_seconds"`
	Notifications      bool `yaml:"notifications"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:            1,
		DaemonBinary:       "twingate",
		NotifierBinary:     "twingate-notifier",
		ElevateBinary:      "pkexec",
		RunDir:             "/run/twingate",
		RefreshSeconds:     30,
		FetchMaxRetries:    8,
		AuthTimeoutSeconds: 120,
		Notifications:      true,
	}
}

// RefreshInterval returns the snapshot staleness threshold.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshSeconds) * time.Second
}

// AuthTimeout returns the overall authentication wait window.
func (s *Settings) AuthTimeout() time.Duration {
	return time.Duration(s.AuthTimeoutSeconds) * time.Second
}
