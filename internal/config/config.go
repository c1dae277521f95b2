// Package config loads and persists AtlasAI settings.
//
// Settings live in config.yaml under the AtlasAI home directory
// (~/.atlasai by default, overridable with ATLASAI_HOME). Missing files
// are not an error; defaults apply and file values merge on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents AtlasAI configuration options
type Config struct {
	// Provider is the AI backend used for queries (currently "ollama")
	Provider string `yaml:"provider"`

	// Model is the model name passed to the provider
	Model string `yaml:"model"`

	// BaseURL is the provider API endpoint
	BaseURL string `yaml:"base_url"`

	// Language selects the assistant's response language ("en" or "es")
	Language string `yaml:"language"`

	// VerifyCommands enables interactive confirmation for restricted commands
	VerifyCommands bool `yaml:"verify_commands"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// HistoryDBPath is the path to the run history database.
	// Empty means history.db under the AtlasAI home directory.
	HistoryDBPath string `yaml:"history_db_path"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Provider:       "ollama",
		Model:          "qwen3:8b",
		BaseURL:        "http://localhost:11434",
		Language:       "en",
		VerifyCommands: true,
		LogLevel:       "info",
		HistoryDBPath:  "",
	}
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Provider != "ollama" {
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	switch c.Language {
	case "en", "es":
	default:
		return fmt.Errorf("unsupported language %q (expected en or es)", c.Language)
	}
	return nil
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.Provider != "" {
		cfg.Provider = fileCfg.Provider
	}
	if fileCfg.Model != "" {
		cfg.Model = fileCfg.Model
	}
	if fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.Language != "" {
		cfg.Language = fileCfg.Language
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.HistoryDBPath != "" {
		cfg.HistoryDBPath = fileCfg.HistoryDBPath
	}

	// Booleans need presence detection so "false" in the file wins over
	// the default "true".
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["verify_commands"]; exists {
			cfg.VerifyCommands = fileCfg.VerifyCommands
		}
	}

	return cfg, nil
}

// Load loads configuration from config.yaml in the AtlasAI home directory
func Load() (*Config, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(home, "config.yaml"))
}

// Save writes the configuration to config.yaml in the AtlasAI home directory
func (c *Config) Save() error {
	home, err := Home()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(home, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolveHistoryDBPath returns the history database path, defaulting to
// history.db under the AtlasAI home directory when unset.
func (c *Config) ResolveHistoryDBPath() (string, error) {
	if c.HistoryDBPath != "" {
		return c.HistoryDBPath, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// Home returns the AtlasAI home directory
// Priority order:
//  1. ATLASAI_HOME environment variable (if set)
//  2. ~/.atlasai
//
// The directory is created if it doesn't exist
func Home() (string, error) {
	dir := os.Getenv("ATLASAI_HOME")
	if dir == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		dir = filepath.Join(userHome, ".atlasai")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create atlasai home directory: %w", err)
	}
	return dir, nil
}
