package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GAMEVAULT_STATE_DIR", "")
	t.Setenv("GAMEVAULT_DATABASE_URL", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 168*time.Hour || cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("durations: %+v", cfg)
	}
	if cfg.RAWGBaseURL != "https://api.rawg.io/api" || cfg.SignInMaxFails != 5 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if filepath.Base(cfg.StateDir) != "gamevault" {
		t.Fatalf("state dir=%q", cfg.StateDir)
	}
	if err := cfg.RequireStore(); err == nil || !strings.Contains(err.Error(), "GAMEVAULT_DATABASE_URL") {
		t.Fatalf("want missing DSN reported, got %v", err)
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	body := "GAMEVAULT_DATABASE_URL=postgres://from-file\nGAMEVAULT_JWT_SECRET=0123456789abcdef\nGAMEVAULT_CACHE_TTL=5m\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GAMEVAULT_DATABASE_URL", "postgres://from-env")
	t.Setenv("GAMEVAULT_JWT_SECRET", "")
	os.Unsetenv("GAMEVAULT_JWT_SECRET")
	t.Setenv("GAMEVAULT_CACHE_TTL", "")
	os.Unsetenv("GAMEVAULT_CACHE_TTL")
	t.Setenv("GAMEVAULT_ENV", "local")

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://from-env" {
		t.Fatalf("environment must win over the file: %q", cfg.DatabaseURL)
	}
	if cfg.CacheTTL != 5*time.Minute || cfg.JWTSecret != "0123456789abcdef" {
		t.Fatalf("file values: %+v", cfg)
	}
	if !cfg.Local() {
		t.Fatalf("local env not detected")
	}
	if err := cfg.RequireStore(); err != nil {
		t.Fatalf("RequireStore: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatalf("explicit missing env file must fail")
	}
}

func TestRequireStore_ShortSecret(t *testing.T) {
	t.Parallel()
	c := &Config{DatabaseURL: "postgres://x", JWTSecret: "short", SessionTTL: time.Hour}
	if err := c.RequireStore(); err == nil || !strings.Contains(err.Error(), "16 bytes") {
		t.Fatalf("got %v", err)
	}
}
