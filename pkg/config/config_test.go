package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
storage:
  type: ""
  local: {}
trash:
  retention_hours: 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if cfg.Storage.Type != "local" {
		t.Fatalf("expected storage type local, got %s", cfg.Storage.Type)
	}
	if cfg.Trash.RetentionHours != 24 {
		t.Fatalf("expected retention 24h, got %d", cfg.Trash.RetentionHours)
	}
	if cfg.Trash.PurgePageSize != 1000 {
		t.Fatalf("expected purge page size 1000, got %d", cfg.Trash.PurgePageSize)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
  listen_backlog: 128
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown config field, got nil")
	}
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Storage.Type != "local" {
		t.Fatalf("expected default storage type local, got %s", cfg.Storage.Type)
	}
	if cfg.Trash.RetentionHours != 24 {
		t.Fatalf("expected default retention 24h, got %d", cfg.Trash.RetentionHours)
	}
	if cfg.Trash.ListLimit != 100 {
		t.Fatalf("expected default trash list limit 100, got %d", cfg.Trash.ListLimit)
	}
}
