// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "httpvfs.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.HTTP.RequestTimeout != 30*time.Second {
		t.Errorf("expected request_timeout=30s, got %s", cfg.HTTP.RequestTimeout)
	}
	if cfg.Worker.MaxRows != 0 {
		t.Errorf("expected max_rows=0, got %d", cfg.Worker.MaxRows)
	}
	if cfg.Logging.Format != "auto" {
		t.Errorf("expected format=auto, got %s", cfg.Logging.Format)
	}
}

func TestLoad_RequiresHTTPVFSConfig(t *testing.T) {
	t.Setenv("HTTPVFS_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HTTPVFS_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "HTTPVFS_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithHTTPVFSConfig(t *testing.T) {
	t.Setenv("HTTPVFS_CONFIG", writeConfig(t, `
environment: staging
database:
  url: https://example.org/aqi.sqlite
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Database.URL != "https://example.org/aqi.sqlite" {
		t.Errorf("expected database.url, got %q", cfg.Database.URL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
database:
  base_url: https://example.org/data/
  name: aqi.sqlite
http:
  request_timeout: 5s
  user_agent: aqi-viewer/1.0
worker:
  socket_path: /run/aqi/query.sock
  max_rows: 250
logging:
  level: debug
  format: text
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Database.BaseURL != "https://example.org/data/" || cfg.Database.Name != "aqi.sqlite" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.HTTP.RequestTimeout != 5*time.Second {
		t.Errorf("expected request_timeout=5s, got %s", cfg.HTTP.RequestTimeout)
	}
	if cfg.HTTP.UserAgent != "aqi-viewer/1.0" {
		t.Errorf("expected user_agent=aqi-viewer/1.0, got %s", cfg.HTTP.UserAgent)
	}
	if cfg.Worker.SocketPath != "/run/aqi/query.sock" || cfg.Worker.MaxRows != 250 {
		t.Errorf("worker = %+v", cfg.Worker)
	}
	level, err := cfg.Logging.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, %v; want debug", level, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	if _, err := LoadFile(writeConfig(t, "worker: [unclosed")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
environment: development
database:
  url: https://prod.example.org/aqi.sqlite
worker:
  max_rows: 100
development:
  database:
    base_url: http://localhost:8000/
    name: aqi.sqlite
  worker:
    max_rows: 5
  logging:
    level: debug
production:
  worker:
    max_rows: 999
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Database.URL != "" || cfg.Database.BaseURL != "http://localhost:8000/" {
		t.Errorf("database override not applied as a unit: %+v", cfg.Database)
	}
	if cfg.Worker.MaxRows != 5 {
		t.Errorf("expected max_rows=5 from development override, got %d", cfg.Worker.MaxRows)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level=debug, got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProductionDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
environment: production
database:
  url: https://example.org/aqi.sqlite
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Worker.MaxRows != productionMaxRows {
		t.Errorf("expected production max_rows=%d, got %d", productionMaxRows, cfg.Worker.MaxRows)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected production format=json, got %s", cfg.Logging.Format)
	}

	explicit, err := LoadFile(writeConfig(t, `
environment: production
database:
  url: https://example.org/aqi.sqlite
worker:
  max_rows: 50
logging:
  format: text
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if explicit.Worker.MaxRows != 50 || explicit.Logging.Format != "text" {
		t.Errorf("explicit production values overridden: %+v %+v", explicit.Worker, explicit.Logging)
	}
}

func TestExpandSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	cfg, err := LoadFile(writeConfig(t, "database:\n  url: https://example.org/a.sqlite\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Worker.SocketPath != "/run/user/1000/httpvfs.sock" {
		t.Errorf("socket_path = %q", cfg.Worker.SocketPath)
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	cfg, err = LoadFile(writeConfig(t, "database:\n  url: https://example.org/a.sqlite\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Worker.SocketPath != "/tmp/httpvfs.sock" {
		t.Errorf("socket_path default = %q", cfg.Worker.SocketPath)
	}
}

func TestLoadDefault(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	cfg := LoadDefault()
	if cfg.Worker.SocketPath != "/run/user/1000/httpvfs.sock" {
		t.Errorf("socket_path = %q", cfg.Worker.SocketPath)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation to fail without a database location")
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("HTTPVFS_TEST_SET", "value")
	t.Setenv("HTTPVFS_TEST_EMPTY", "")

	tests := []struct {
		input string
		want  string
	}{
		{"${HTTPVFS_TEST_SET}/x", "value/x"},
		{"${HTTPVFS_TEST_EMPTY:-fallback}", "fallback"},
		{"${HTTPVFS_TEST_EMPTY}", ""},
		{"plain", "plain"},
		{"${HTTPVFS_TEST_SET}-${HTTPVFS_TEST_EMPTY:-d}", "value-d"},
	}
	for _, test := range tests {
		if got := expandVars(test.input); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.URL = "https://example.org/aqi.sqlite"
		cfg.Worker.SocketPath = "/tmp/q.sock"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"no location", func(c *Config) { c.Database = DatabaseConfig{} }, "is required"},
		{"both locations", func(c *Config) { c.Database.BaseURL = "https://example.org/" }, "not both"},
		{"name without base", func(c *Config) { c.Database = DatabaseConfig{Name: "a.sqlite"} }, "is required"},
		{"relative url", func(c *Config) { c.Database.URL = "aqi.sqlite" }, "http or https"},
		{"file url", func(c *Config) { c.Database.URL = "file:///tmp/aqi.sqlite" }, "http or https"},
		{"relative base", func(c *Config) { c.Database = DatabaseConfig{BaseURL: "data/", Name: "a"} }, "http or https"},
		{"timeout", func(c *Config) { c.HTTP.RequestTimeout = 0 }, "request_timeout"},
		{"socket", func(c *Config) { c.Worker.SocketPath = "" }, "socket_path"},
		{"max rows", func(c *Config) { c.Worker.MaxRows = -1 }, "max_rows"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}
