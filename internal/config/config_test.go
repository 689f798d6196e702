package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("JOBS_RELEASE_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9090" {
		t.Fatalf("unexpected addr %q", cfg.App.Addr())
	}
	if cfg.Jobs.ReleaseSchedule != "@every 15m" {
		t.Fatalf("unexpected schedule %q", cfg.Jobs.ReleaseSchedule)
	}
	if cfg.App.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.App.RequestTimeout())
	}
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid REDIS_DB")
	}
}

func TestLoadClientMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" || cfg.PageSize != 10 || cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadClientFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parkctl.yaml")
	content := "api_url: https://parking.example.com\npage_size: 25\nsearch_debounce: 250ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PARKCTL_LOG_LEVEL", "debug")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.APIURL != "https://parking.example.com" || cfg.PageSize != 25 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SearchDebounce != 250*time.Millisecond {
		t.Fatalf("debounce=%v", cfg.SearchDebounce)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env override not applied: %q", cfg.LogLevel)
	}
}
