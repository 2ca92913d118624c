package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nestedConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TEST_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver  string        `yaml:"driver"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"storage"`
	Origins []string `yaml:"origins" env:"TEST_ORIGINS"`
	Enabled bool     `yaml:"enabled" env:"TEST_ENABLED"`
	Ratio   float64  `yaml:"ratio" env:"TEST_RATIO"`
	Skipped string   `yaml:"skipped" env:"-"`
}

func TestLoadConfigFromFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := "http:\n  port: \"5000\"\nstorage:\n  driver: mongo\nenabled: false\nratio: 0.5\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TEST_HTTP_PORT", "6000")
	t.Setenv("STORAGE_TIMEOUT", "250ms")
	t.Setenv("TEST_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TEST_ENABLED", "true")

	var cfg nestedConfig
	if err := LoadConfigFrom(path, &cfg); err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Port != "6000" {
		t.Fatalf("expected env to override port, got %q", cfg.HTTP.Port)
	}
	if cfg.Storage.Driver != "mongo" {
		t.Fatalf("expected driver from file, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Timeout != 250*time.Millisecond {
		t.Fatalf("expected derived env key to set timeout, got %s", cfg.Storage.Timeout)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "http://a.test" || cfg.Origins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.Origins)
	}
	if !cfg.Enabled {
		t.Fatalf("expected enabled to be overridden")
	}
	if cfg.Ratio != 0.5 {
		t.Fatalf("expected ratio from file, got %v", cfg.Ratio)
	}
}

func TestLoadConfigSkipsDashTag(t *testing.T) {
	t.Setenv("SKIPPED", "nope")
	var cfg nestedConfig
	if err := LoadConfigFrom("", &cfg); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Skipped != "" {
		t.Fatalf("expected skipped field untouched, got %q", cfg.Skipped)
	}
}

func TestLoadConfigRejectsBadTargets(t *testing.T) {
	if err := LoadConfigFrom("", nil); err == nil {
		t.Fatalf("expected error for nil target")
	}
	var notStruct int
	if err := LoadConfigFrom("", &notStruct); err == nil {
		t.Fatalf("expected error for non-struct target")
	}
}

func TestLoadConfigReportsParseErrors(t *testing.T) {
	t.Setenv("TEST_RATIO", "not-a-number")
	var cfg nestedConfig
	if err := LoadConfigFrom("", &cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg nestedConfig
	if err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yml"), &cfg); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
