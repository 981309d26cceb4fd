// Package config provides configuration management for promptlean.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultListenAddr binds the API to localhost only.
	DefaultListenAddr = "127.0.0.1:8377"
	DefaultModel      = "optimizer-small"
	DefaultMaxConns   = 4
	DefaultAPIBaseURL = "https://api.promptlean.dev"

	// APIKeyEnv overrides the settings-file API key when set.
	APIKeyEnv = "PROMPTLEAN_API_KEY"
)

// Settings is the on-disk configuration.
type Settings struct {
	APIBaseURL string `yaml:"api_base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	ListenAddr string `yaml:"listen_addr"`
	MaxConns   int    `yaml:"max_conns"`
}

// Default returns the default configuration values.
func Default() *Settings {
	return &Settings{
		APIBaseURL: DefaultAPIBaseURL,
		Model:      DefaultModel,
		ListenAddr: DefaultListenAddr,
		MaxConns:   DefaultMaxConns,
	}
}

// DataDir returns the data directory (~/.promptlean).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptlean"
	}
	return filepath.Join(home, ".promptlean")
}

// DBPath returns the SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "promptlean.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.yaml")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

// Load reads the settings file. A missing file yields defaults, not an
// error. An API key in the environment wins over the file.
func Load() (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the settings file.
func Save(cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return os.WriteFile(SettingsPath(), data, 0o600)
}

func applyEnv(cfg *Settings) {
	if v := os.Getenv(APIKeyEnv); v != "" {
		cfg.APIKey = v
	}
}
