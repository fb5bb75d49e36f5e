package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NumFrames != 20 {
		t.Errorf("NumFrames = %d, want 20", cfg.NumFrames)
	}
	if cfg.Oracle.Provider != "gemini" {
		t.Errorf("Oracle.Provider = %q, want gemini", cfg.Oracle.Provider)
	}
	if cfg.Scrape.MaxTextChars != 10000 {
		t.Errorf("Scrape.MaxTextChars = %d, want 10000", cfg.Scrape.MaxTextChars)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestApplyDefaultsOnSparseConfig(t *testing.T) {
	raw := []byte("num_frames: 5\nserver:\n  port: 9090\n")

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg.applyDefaults()

	if cfg.NumFrames != 5 {
		t.Errorf("NumFrames = %d, want 5 (explicit value kept)", cfg.NumFrames)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (explicit value kept)", cfg.Server.Port)
	}
	if cfg.Scrape.MaxLinks != 20 {
		t.Errorf("Scrape.MaxLinks = %d, want 20 (default filled)", cfg.Scrape.MaxLinks)
	}
	if cfg.Oracle.Provider != "gemini" {
		t.Errorf("Oracle.Provider = %q, want gemini (default filled)", cfg.Oracle.Provider)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionsRoot = "/data/analysis"
	cfg.Oracle.Model = "gemini-2.0-flash"
	cfg.Server.APIKey = "secret"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if loaded.SessionsRoot != cfg.SessionsRoot {
		t.Errorf("SessionsRoot = %q, want %q", loaded.SessionsRoot, cfg.SessionsRoot)
	}
	if loaded.Oracle.Model != cfg.Oracle.Model {
		t.Errorf("Oracle.Model = %q, want %q", loaded.Oracle.Model, cfg.Oracle.Model)
	}
	if loaded.Server.APIKey != cfg.Server.APIKey {
		t.Errorf("Server.APIKey = %q, want %q", loaded.Server.APIKey, cfg.Server.APIKey)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/analysis", filepath.Join(home, "analysis")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
		{"~user/analysis", "~user/analysis"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
