package config

import (
	"os"
	"path/filepath"
)

// DataPath returns the root directory for tasklistd data.
// It uses $TASKLISTD_PATH if set, otherwise defaults to ~/.tasklistd.
func DataPath() string {
	if v := os.Getenv("TASKLISTD_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tasklistd")
	}
	return filepath.Join(home, ".tasklistd")
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(DataPath(), "config.jsonc")
}

// DotenvPath returns the default .env file path.
func DotenvPath() string {
	return filepath.Join(DataPath(), ".env")
}
