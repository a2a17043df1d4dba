// Package config loads and persists the user-editable YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	StorageKeyring = "keyring"
	StorageFile    = "file"
)

type Config struct {
	Version        string   `yaml:"version"`
	Authority      string   `yaml:"authority,omitempty"`
	ClientID       string   `yaml:"client-id,omitempty"`
	SessionStorage string   `yaml:"session-storage,omitempty"`
	Settings       Settings `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	PageSize     int    `yaml:"page-size,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version:        VersionV1,
		SessionStorage: StorageKeyring,
		Settings: Settings{
			OutputFormat: "table",
			PageSize:     50,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults rather
// than an error, so a fresh install works without setup.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if cfg.SessionStorage == "" {
		cfg.SessionStorage = StorageKeyring
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	switch c.SessionStorage {
	case "", StorageKeyring, StorageFile:
	default:
		return fmt.Errorf("unknown session-storage: %s", c.SessionStorage)
	}
	switch c.Settings.OutputFormat {
	case "", "table", "json", "yaml", "csv":
	default:
		return fmt.Errorf("unknown output-format: %s", c.Settings.OutputFormat)
	}
	if c.Settings.PageSize < 0 {
		return errors.New("page-size cannot be negative")
	}
	return nil
}
