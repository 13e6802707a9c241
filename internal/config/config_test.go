package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected memory driver by default, got %q", cfg.Database.Driver)
	}
	if cfg.Pipeline.StageTimeout != 60*time.Second {
		t.Errorf("expected 60s stage timeout, got %v", cfg.Pipeline.StageTimeout)
	}
	if cfg.Pipeline.CampaignDeadline != 5*time.Minute {
		t.Errorf("expected 5m campaign deadline, got %v", cfg.Pipeline.CampaignDeadline)
	}
	if cfg.Pipeline.MaxConcurrent != 16 {
		t.Errorf("expected 16 max concurrent, got %d", cfg.Pipeline.MaxConcurrent)
	}
	if cfg.Providers.Content.Model != "gpt-4o-mini" {
		t.Errorf("unexpected default model: %q", cfg.Providers.Content.Model)
	}
	if cfg.Archive.Enabled {
		t.Error("archiving should be disabled by default")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9191
  mode: release
database:
  driver: sqlite
  path: /tmp/test-campaigns.db
pipeline:
  stage_timeout: 30s
  max_concurrent: 4
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("UNSPLASH_ACCESS_KEY", "unsplash-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9191 || cfg.Server.Mode != "release" {
		t.Errorf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.Pipeline.StageTimeout != 30*time.Second {
		t.Errorf("expected 30s stage timeout, got %v", cfg.Pipeline.StageTimeout)
	}
	if cfg.Pipeline.MaxConcurrent != 4 {
		t.Errorf("expected 4 max concurrent, got %d", cfg.Pipeline.MaxConcurrent)
	}
	// Defaults survive partial files.
	if cfg.Pipeline.CampaignDeadline != 5*time.Minute {
		t.Errorf("expected default deadline, got %v", cfg.Pipeline.CampaignDeadline)
	}
	if cfg.Providers.Content.APIKey != "sk-test" {
		t.Error("expected API key from environment")
	}
	if cfg.Providers.Images.AccessKey != "unsplash-test" {
		t.Error("expected access key from environment")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := &DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		User:     "vyralflow",
		Password: "secret",
		Name:     "campaigns",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=vyralflow password=secret dbname=campaigns sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("postgres DSN = %q, want %q", got, want)
	}

	lite := &DatabaseConfig{Driver: "sqlite", Path: "./data/campaigns.db"}
	if got := lite.DSN(); got != "./data/campaigns.db" {
		t.Errorf("sqlite DSN = %q", got)
	}
}
