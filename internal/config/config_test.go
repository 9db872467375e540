package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "progress.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Storage.BleveIndexPath != "" {
		t.Errorf("bleve_index_path should stay empty (in-memory), got %q", cfg.Storage.BleveIndexPath)
	}
	if cfg.Content.Path != "" {
		t.Errorf("content path should stay empty (embedded content), got %q", cfg.Content.Path)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_sessionTTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
session:
  ttl: 15m
search:
  default_mode: ranked
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Errorf("ttl = %v, want 15m", cfg.Session.TTL)
	}
	if cfg.Search.DefaultMode != "ranked" {
		t.Errorf("default_mode = %q", cfg.Search.DefaultMode)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/progress.db"
  bleve_index_path: "./data/bleve"
content:
  path: "./content/handbook.yaml"
  watch: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "progress.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data", "bleve"); cfg.Storage.BleveIndexPath != want {
		t.Errorf("bleve_index_path = %s, want %s", cfg.Storage.BleveIndexPath, want)
	}
	if want := filepath.Join(dir, "content", "handbook.yaml"); cfg.Content.Path != want {
		t.Errorf("content path = %s, want %s", cfg.Content.Path, want)
	}
	if !cfg.Content.Watch {
		t.Error("watch should be true")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.ContextChars != 50 {
		t.Errorf("default context_chars: got %d", cfg.Search.ContextChars)
	}
	if cfg.Search.DefaultMode != "substring" {
		t.Errorf("default mode: got %q", cfg.Search.DefaultMode)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("default ttl: got %v", cfg.Session.TTL)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		Session: SessionConfig{TTL: time.Hour},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Session.TTL != time.Hour {
		t.Errorf("loaded ttl: got %v", loaded.Session.TTL)
	}
}
