package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "azvault"
	defaultConfigFile    = "config.yaml"
	defaultSessionFile   = "session.json"
)

func DefaultConfigPath() string {
	if env := os.Getenv("AZVAULT_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".azvault", defaultConfigFile)
}

func DefaultSessionPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultSessionFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".azvault", defaultSessionFile)
}

func DefaultAuditDir() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, "audit")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".azvault", "audit")
}
