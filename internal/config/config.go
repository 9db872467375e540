// Package config provides configuration loading and structs for the handbook server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Content ContentConfig `yaml:"content"`
	Search  SearchConfig  `yaml:"search"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the progress database and the keyword index.
// An empty BleveIndexPath keeps the keyword index in memory.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// ContentConfig selects the handbook content file. An empty Path uses the
// content built into the binary.
type ContentConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	ContextChars int     `yaml:"context_chars"`
	DefaultLimit int     `yaml:"default_limit"`
	MaxLimit     int     `yaml:"max_limit"`
	DefaultMode  string  `yaml:"default_mode"`
	TitleBoost   float64 `yaml:"title_boost"`
	// RankingEnabled re-orders ranked hits by match quality. Defaults to true.
	RankingEnabled *bool `yaml:"ranking_enabled"`
}

// RankingEnabledOrDefault returns RankingEnabled, defaulting to true when unset.
func (s *SearchConfig) RankingEnabledOrDefault() bool {
	if s.RankingEnabled != nil {
		return *s.RankingEnabled
	}
	return true
}

// SessionConfig holds search session settings.
type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Content.Path = expandPath(cfg.Content.Path, configDir)

	return &cfg, nil
}

// Default returns a config with every default applied, for running without a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
