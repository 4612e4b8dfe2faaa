// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global AutoReflex directory.
	GlobalDirName = ".autoreflex"

	// LogsDirName is the name of the diagnostic logs directory.
	LogsDirName = "logs"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	LogFileName      = "autoreflex.log"
	EnvFileName      = ".env"
)

// homeDirOverride lets tests point the global directory elsewhere.
var homeDirOverride string

// GlobalDir returns the path to the global AutoReflex directory (~/.autoreflex/).
// AUTOREFLEX_HOME replaces the whole path when set.
func GlobalDir() (string, error) {
	if dir := os.Getenv("AUTOREFLEX_HOME"); dir != "" {
		return dir, nil
	}
	home := homeDirOverride
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// DefaultLogFile returns the path of the diagnostic log file.
func DefaultLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

// EnsureGlobalDir creates the global AutoReflex directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
