package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path == "" {
		t.Fatal("default database path empty")
	}
	if cfg.UI.Theme != "dark" {
		t.Fatalf("default theme %q", cfg.UI.Theme)
	}
	if cfg.Log.Debug {
		t.Fatal("debug should default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("database:\n  path: /tmp/custom.db\nui:\n  theme: light\nlog:\n  debug: true\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Fatalf("path %q", cfg.Database.Path)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("theme %q", cfg.UI.Theme)
	}
	if !cfg.Log.Debug {
		t.Fatal("debug not set")
	}
	// Unset keys keep their defaults.
	if cfg.Log.File == "" {
		t.Fatal("log file default lost")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
