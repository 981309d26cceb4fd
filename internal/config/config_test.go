// Package config provides configuration management for promptlean.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir     string
	origHomeDir string
}

func (s *ConfigSuite) SetupTest() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "config-test-*")
	s.Require().NoError(err)

	// Save and override HOME
	s.origHomeDir = os.Getenv("HOME")
	os.Setenv("HOME", s.tempDir)
	os.Unsetenv(APIKeyEnv)
}

func (s *ConfigSuite) TearDownTest() {
	os.Setenv("HOME", s.origHomeDir)
	os.RemoveAll(s.tempDir)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultAPIBaseURL, cfg.APIBaseURL)
	s.Equal(DefaultModel, cfg.Model)
	s.Equal(DefaultListenAddr, cfg.ListenAddr)
	s.Equal(DefaultMaxConns, cfg.MaxConns)
	s.Empty(cfg.APIKey)
}

// TestDataDir tests data directory path.
func (s *ConfigSuite) TestDataDir() {
	s.Contains(DataDir(), ".promptlean")
}

// TestDBPath tests database path.
func (s *ConfigSuite) TestDBPath() {
	s.Contains(DBPath(), "promptlean.db")
}

// TestSettingsPath tests settings file path.
func (s *ConfigSuite) TestSettingsPath() {
	s.Contains(SettingsPath(), "settings.yaml")
}

// TestEnsureDataDir tests data directory creation.
func (s *ConfigSuite) TestEnsureDataDir() {
	s.NoError(EnsureDataDir())

	info, err := os.Stat(DataDir())
	s.Require().NoError(err)
	s.True(info.IsDir())
}

// TestLoadMissingFile tests that a missing settings file yields defaults.
func (s *ConfigSuite) TestLoadMissingFile() {
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
}

// TestSaveAndLoad tests the settings round trip.
func (s *ConfigSuite) TestSaveAndLoad() {
	cfg := Default()
	cfg.Model = "optimizer-large"
	cfg.ListenAddr = "127.0.0.1:9000"
	s.Require().NoError(Save(cfg))

	loaded, err := Load()
	s.Require().NoError(err)
	s.Equal("optimizer-large", loaded.Model)
	s.Equal("127.0.0.1:9000", loaded.ListenAddr)
}

// TestLoadNormalizesZeroValues tests that bad values fall back to defaults.
func (s *ConfigSuite) TestLoadNormalizesZeroValues() {
	s.Require().NoError(EnsureDataDir())
	s.Require().NoError(os.WriteFile(SettingsPath(), []byte("max_conns: -1\n"), 0o600))

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(DefaultMaxConns, cfg.MaxConns)
	s.Equal(DefaultModel, cfg.Model)
}

// TestLoadBadYAML tests that malformed settings fail loudly.
func (s *ConfigSuite) TestLoadBadYAML() {
	s.Require().NoError(EnsureDataDir())
	s.Require().NoError(os.WriteFile(SettingsPath(), []byte("{not yaml"), 0o600))

	_, err := Load()
	s.Error(err)
}

// TestEnvOverridesAPIKey tests the environment override.
func (s *ConfigSuite) TestEnvOverridesAPIKey() {
	cfg := Default()
	cfg.APIKey = "from-file"
	s.Require().NoError(Save(cfg))

	os.Setenv(APIKeyEnv, "from-env")
	defer os.Unsetenv(APIKeyEnv)

	loaded, err := Load()
	s.Require().NoError(err)
	s.Equal("from-env", loaded.APIKey)

	// Sanity: the file itself still holds the original key
	data, err := os.ReadFile(filepath.Join(s.tempDir, ".promptlean", "settings.yaml"))
	s.Require().NoError(err)
	s.Contains(string(data), "from-file")
}
