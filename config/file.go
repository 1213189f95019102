package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pevans/seminarfed/dialect"
	"gopkg.in/yaml.v3"
)

// FetchConfig configures how agenda pages are fetched.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Attempts  int           `yaml:"attempts"`
	UserAgent string        `yaml:"user_agent"`
}

// FileConfig represents the structure of ~/.seminarfed/config.yaml.
type FileConfig struct {
	Storage struct {
		DSN string `yaml:"dsn"`
	} `yaml:"storage"`
	Fetch    FetchConfig                  `yaml:"fetch"`
	Schedule string                       `yaml:"schedule"`
	LogLevel string                       `yaml:"log_level"`
	Dialects map[string]dialect.Overrides `yaml:"dialects"`
}

// ConfigFilePath returns the path of the config file.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".seminarfed", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.seminarfed/config.yaml. Returns
// nil if the file doesn't exist (not an error). Returns error if the file
// exists but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// WriteDefaultConfigFile writes a config file holding the default settings,
// with the database next to it. An existing file is left alone unless force
// is set. Reports whether a file was written.
func WriteDefaultConfigFile(force bool) (bool, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return false, nil
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := Defaults()
	var cfg FileConfig
	cfg.Storage.DSN = filepath.Join(dir, "seminarfed.db")
	cfg.Fetch = defaults.Fetch
	cfg.Schedule = defaults.Schedule
	cfg.LogLevel = defaults.LogLevel

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("failed to marshal config file: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
