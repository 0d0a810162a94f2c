package config

import (
	"os"
	"path/filepath"
)

// BioclawPath returns the root directory for bioclaw data.
// It uses $BIOCLAW_PATH if set, otherwise defaults to ~/.bioclaw.
func BioclawPath() string {
	if v := os.Getenv("BIOCLAW_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bioclaw")
	}
	return filepath.Join(home, ".bioclaw")
}

// ConfigPath returns the path to the bioclaw config file.
func ConfigPath() string {
	return filepath.Join(BioclawPath(), "config.jsonc")
}

// DotenvPath returns the path to the bioclaw .env file.
func DotenvPath() string {
	return filepath.Join(BioclawPath(), ".env")
}
