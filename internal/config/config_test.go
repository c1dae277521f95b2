package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Provider != defaults.Provider {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
	if cfg.Model != defaults.Model {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
	if !cfg.VerifyCommands {
		t.Error("verification should default to enabled")
	}
}

func TestLoadConfig_MergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
model: llama3:70b
language: es
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model != "llama3:70b" {
		t.Errorf("model not merged: %q", cfg.Model)
	}
	if cfg.Language != "es" {
		t.Errorf("language not merged: %q", cfg.Language)
	}
	// Untouched keys keep their defaults.
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Errorf("base_url should keep default, got %q", cfg.BaseURL)
	}
}

func TestLoadConfig_ExplicitFalseWins(t *testing.T) {
	path := writeConfig(t, "verify_commands: false\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VerifyCommands {
		t.Error("verify_commands: false in the file should override the default")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "model: [unclosed\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"spanish is valid", func(c *Config) { c.Language = "es" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "openai" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"unknown language", func(c *Config) { c.Language = "fr" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHome_UsesEnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-home")
	t.Setenv("ATLASAI_HOME", dir)

	home, err := Home()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if home != dir {
		t.Errorf("expected %q, got %q", dir, home)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("home directory should be created: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("ATLASAI_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Model = "mistral:7b"
	cfg.VerifyCommands = false

	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model != "mistral:7b" {
		t.Errorf("model not persisted: %q", loaded.Model)
	}
	if loaded.VerifyCommands {
		t.Error("verify_commands not persisted")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
