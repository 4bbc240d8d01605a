package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
symbol: gbp-usd
pages: 3
log:
  level: debug
fetch:
  engine: http
  http_timeout_seconds: 7
store:
  path: /tmp/news.db
publishers:
  file: publishers.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Symbol != "gbp-usd" || cfg.Pages != 3 {
		t.Errorf("symbol/pages = %q/%d", cfg.Symbol, cfg.Pages)
	}
	if cfg.Fetch.Engine != EngineHTTP || cfg.Fetch.HTTPTimeoutSeconds != 7 {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.Store.Path != "/tmp/news.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Publishers.File != "publishers.yaml" {
		t.Errorf("publishers file = %q", cfg.Publishers.File)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "symbol: eur-usd\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Pages != 1 {
		t.Errorf("default pages = %d, want 1", cfg.Pages)
	}
	if cfg.Fetch.Engine != EngineBrowser {
		t.Errorf("default engine = %q, want browser", cfg.Fetch.Engine)
	}
	if !cfg.Browser.Headless {
		t.Error("default headless = false, want true")
	}
	if cfg.Browser.NavTimeoutSeconds != 30 {
		t.Errorf("default nav timeout = %d, want 30", cfg.Browser.NavTimeoutSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HARVESTER_PAGES", "5")
	t.Setenv("HARVESTER_FETCH_ENGINE", "http")

	path := writeConfig(t, "symbol: eur-usd\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Pages != 5 {
		t.Errorf("pages = %d, want env override 5", cfg.Pages)
	}
	if cfg.Fetch.Engine != EngineHTTP {
		t.Errorf("engine = %q, want env override http", cfg.Fetch.Engine)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty symbol", "symbol: \"\"\n"},
		{"negative pages", "symbol: eur-usd\npages: -1\n"},
		{"unknown engine", "symbol: eur-usd\nfetch:\n  engine: carrier-pigeon\n"},
		{"zero http timeout", "symbol: eur-usd\nfetch:\n  http_timeout_seconds: 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatal("Load accepted invalid config")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded with a missing explicit config file")
	}
}
