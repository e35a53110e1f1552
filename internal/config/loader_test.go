package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONCWithCommentsAndDefaults(t *testing.T) {
	path := writeFile(t, "config.jsonc", `{
		// local dev setup
		"server": { "port": 9000 },
		"store": { "driver": "memory" },
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port: got %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host default: got %q", cfg.Server.Host)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("driver: got %q", cfg.Store.Driver)
	}
	if cfg.Auth.TokenTTL.Duration() != 24*time.Hour {
		t.Errorf("ttl default: got %v", cfg.Auth.TokenTTL.Duration())
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("buffer default: got %d", cfg.Events.BufferSize)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  host: 0.0.0.0
  port: 8080
auth:
  token_ttl: 2h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server: got %+v", cfg.Server)
	}
	if cfg.Auth.TokenTTL.Duration() != 2*time.Hour {
		t.Errorf("ttl: got %v", cfg.Auth.TokenTTL.Duration())
	}
}

func TestLoadExpandsEnvTemplates(t *testing.T) {
	t.Setenv("TASKLISTD_TEST_DB", "/tmp/from-env.db")
	path := writeFile(t, "config.jsonc", `{
		"store": { "path": "${{ .Env.TASKLISTD_TEST_DB }}" }
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/tmp/from-env.db" {
		t.Errorf("path: got %q", cfg.Store.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDotenv(t *testing.T) {
	path := writeFile(t, ".env", `
# comment
PLAIN=value
QUOTED="has spaces"
EXISTING=from-file
`)

	t.Setenv("EXISTING", "from-env")
	os.Unsetenv("PLAIN")
	os.Unsetenv("QUOTED")
	t.Cleanup(func() {
		os.Unsetenv("PLAIN")
		os.Unsetenv("QUOTED")
	})

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("PLAIN"); got != "value" {
		t.Errorf("PLAIN: got %q", got)
	}
	if got := os.Getenv("QUOTED"); got != "has spaces" {
		t.Errorf("QUOTED: got %q", got)
	}
	if got := os.Getenv("EXISTING"); got != "from-env" {
		t.Errorf("EXISTING overridden: got %q", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing dotenv should be ignored: %v", err)
	}
}

func TestDataPathEnvOverride(t *testing.T) {
	t.Setenv("TASKLISTD_PATH", "/custom/root")
	if got := DataPath(); got != "/custom/root" {
		t.Errorf("DataPath: got %q", got)
	}
	if got := ConfigPath(); got != "/custom/root/config.jsonc" {
		t.Errorf("ConfigPath: got %q", got)
	}
}
