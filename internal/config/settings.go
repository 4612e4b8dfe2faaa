package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/autoreflex/autoreflex/internal/models"
)

// Environment variables that override settings.yaml.
const (
	EnvAPIURL   = "AUTOREFLEX_API_URL"
	EnvPushURL  = "AUTOREFLEX_WS_URL"
	EnvLogLevel = "AUTOREFLEX_LOG_LEVEL"
)

// LoadSettings loads the global settings from ~/.autoreflex/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	settings.Normalize()
	return settings, nil
}

// SaveSettings saves the global settings to ~/.autoreflex/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadEnvFile(path string) error {
	if !FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto settings.
func ApplyEnv(settings *models.Settings) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		settings.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPushURL)); v != "" {
		settings.API.PushURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		settings.Logging.Level = v
	}
}

// Resolve builds the effective settings: settings.yaml, then .env from the
// working directory, then the environment.
func Resolve() (*models.Settings, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(EnvFileName); err != nil {
		return nil, err
	}
	ApplyEnv(settings)
	settings.API.BaseURL = strings.TrimRight(settings.API.BaseURL, "/")
	return settings, nil
}

// SetValue updates one dotted key (e.g. "api.base_url") on settings.
func SetValue(settings *models.Settings, key, value string) error {
	switch key {
	case "api.base_url":
		settings.API.BaseURL = strings.TrimRight(value, "/")
	case "api.push_url":
		settings.API.PushURL = value
	case "api.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		settings.API.Timeout = d
	case "push.reconnect":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		settings.Push.Reconnect = b
	case "push.min_backoff":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		settings.Push.MinBackoff = d
	case "push.max_backoff":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		settings.Push.MaxBackoff = d
	case "logs.capacity":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("invalid capacity %q: must be a positive integer", value)
		}
		settings.Logs.Capacity = n
	case "logging.level":
		settings.Logging.Level = value
	case "logging.file":
		settings.Logging.File = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// SettingKeys lists the keys accepted by SetValue.
var SettingKeys = []string{
	"api.base_url",
	"api.push_url",
	"api.timeout",
	"push.reconnect",
	"push.min_backoff",
	"push.max_backoff",
	"logs.capacity",
	"logging.level",
	"logging.file",
}
