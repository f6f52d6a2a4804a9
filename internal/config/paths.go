package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "IRISDASH_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "irisdash.yaml"
	// ConfigFileNameTOML is the TOML alternative looked up in the working directory
	ConfigFileNameTOML = "irisdash.toml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "irisdash"
)

// FindConfigPath searches for config file in priority order:
// 1. $IRISDASH_CONFIG (explicit path)
// 2. ./irisdash.yaml, then ./irisdash.toml (working directory)
// 3. $XDG_CONFIG_HOME/irisdash/config.yaml
// 4. ~/.config/irisdash/config.yaml
// 5. /etc/irisdash/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	for _, name := range []string{ConfigFileName, ConfigFileNameTOML} {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
