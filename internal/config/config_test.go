package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Mining.MinSupport != 0.005 {
		t.Errorf("Expected min support 0.005, got %v", cfg.Mining.MinSupport)
	}
	if cfg.Recommend.MinPicks != 2 || cfg.Recommend.MaxPicks != 4 {
		t.Errorf("Expected picks 2..4, got %d..%d", cfg.Recommend.MinPicks, cfg.Recommend.MaxPicks)
	}
	if !strings.HasSuffix(cfg.Patterns.ExportPath, "spmf_output.txt") {
		t.Errorf("Unexpected export path: %s", cfg.Patterns.ExportPath)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Missing file should not be an error: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected default port, got %d", cfg.API.Port)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[mining]
miner = "spmf"
min_support = 0.02

[api]
port = 9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Mining.Miner != "spmf" || cfg.Mining.MinSupport != 0.02 {
		t.Errorf("Mining section not applied: %+v", cfg.Mining)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.API.Port)
	}
	if cfg.OpenDota.MatchCount != 50 {
		t.Errorf("Expected default match count to survive, got %d", cfg.OpenDota.MatchCount)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[mining\nminer="), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Mining.MinSupport = 0.1
	cfg.Log.Level = "debug"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Mining.MinSupport != 0.1 || loaded.Log.Level != "debug" {
		t.Errorf("Saved values not loaded back: %+v %+v", loaded.Mining, loaded.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timeout", func(c *Config) { c.OpenDota.Timeout = "soon" }},
		{"bad cache ttl", func(c *Config) { c.OpenDota.CacheTTL = "x" }},
		{"zero rate", func(c *Config) { c.OpenDota.RateLimit = 0 }},
		{"negative match count", func(c *Config) { c.OpenDota.MatchCount = -1 }},
		{"zero support", func(c *Config) { c.Mining.MinSupport = 0 }},
		{"support above one", func(c *Config) { c.Mining.MinSupport = 1.5 }},
		{"unknown miner", func(c *Config) { c.Mining.Miner = "gsp" }},
		{"bad port", func(c *Config) { c.API.Port = 70000 }},
		{"max below min", func(c *Config) { c.Recommend.MinPicks = 3; c.Recommend.MaxPicks = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()

	if d, err := cfg.GetTimeout(); err != nil || d != 30*time.Second {
		t.Errorf("GetTimeout = %v, %v", d, err)
	}
	if d, err := cfg.GetCacheTTL(); err != nil || d != time.Hour {
		t.Errorf("GetCacheTTL = %v, %v", d, err)
	}
	if d, err := cfg.GetHeroCacheTTL(); err != nil || d != 24*time.Hour {
		t.Errorf("GetHeroCacheTTL = %v, %v", d, err)
	}
}
