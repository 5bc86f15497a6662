package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"didathing/internal/platform/config"
)

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
	cfg, err := config.New("/tmp/things")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/tmp/things", "didathing.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected default log level warn, got %s", cfg.LogLevel)
	}
}

func TestLoadAppliesConfigFileAndFlagOverride(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected file log level, got %s", cfg.LogLevel)
	}
	cfg, err = config.Load(dir, "error")
	if err != nil {
		t.Fatalf("load with flag: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected flag to win, got %s", cfg.LogLevel)
	}
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(dir, ""); err == nil {
		t.Fatalf("expected malformed config to fail")
	}
}
