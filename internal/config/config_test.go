package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "syngdict.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
source:
  dir: "/srv/cedict"
  hsk_path: "/srv/hsk.csv"
  strict: true

output:
  dir: "/srv/out"
  compression: "none"
  sqlite_path: "/srv/out/dict.db"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2
  batch_size: 250
  timeout: "2m"

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Source
	if cfg.Source.Dir != "/srv/cedict" {
		t.Errorf("source.dir = %q", cfg.Source.Dir)
	}
	if cfg.Source.HSKPath != "/srv/hsk.csv" {
		t.Errorf("source.hsk_path = %q", cfg.Source.HSKPath)
	}
	if !cfg.Source.Strict {
		t.Error("source.strict should be true")
	}

	// Output
	if cfg.Output.Dir != "/srv/out" {
		t.Errorf("output.dir = %q", cfg.Output.Dir)
	}
	if cfg.Output.Compression != CompressionNone {
		t.Errorf("output.compression = %q, want %q", cfg.Output.Compression, CompressionNone)
	}
	if cfg.Output.SQLitePath != "/srv/out/dict.db" {
		t.Errorf("output.sqlite_path = %q", cfg.Output.SQLitePath)
	}

	// Database
	if !cfg.Database.PublishEnabled() {
		t.Error("publish should be enabled when dsn is set")
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Database.BatchSize != 250 {
		t.Errorf("database.batch_size = %d, want 250", cfg.Database.BatchSize)
	}
	if cfg.Database.Timeout != 2*time.Minute {
		t.Errorf("database.timeout = %v, want 2m", cfg.Database.Timeout)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OUTPUT_COMPRESSION", "xz")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output.Compression != CompressionXZ {
		t.Errorf("output.compression = %q, want %q (ENV override)", cfg.Output.Compression, CompressionXZ)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoadFrom_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("SOURCE_DIR", "/tmp/cedict")

	// Empty path falls back to ./syngdict.yaml, which is absent in a fresh
	// working directory.
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Source.Dir != "/tmp/cedict" {
		t.Errorf("source.dir = %q, want ENV value", cfg.Source.Dir)
	}
	if cfg.Output.Dir != "./out" {
		t.Errorf("output.dir = %q, want default ./out", cfg.Output.Dir)
	}
	if cfg.Output.Compression != CompressionXZ {
		t.Errorf("output.compression = %q, want default xz", cfg.Output.Compression)
	}
	if cfg.Database.PublishEnabled() {
		t.Error("publish should be disabled without dsn")
	}
}

func TestLoadFrom_ExplicitPathNotFound(t *testing.T) {
	_, err := LoadFrom("/nonexistent/syngdict.yaml")
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty source dir", mutate: func(c *Config) { c.Source.Dir = " " }, wantErr: "source.dir"},
		{name: "empty output dir", mutate: func(c *Config) { c.Output.Dir = "" }, wantErr: "output.dir"},
		{name: "unknown compression", mutate: func(c *Config) { c.Output.Compression = "zip" }, wantErr: "output.compression"},
		{name: "zero batch size", mutate: func(c *Config) { c.Database.BatchSize = 0 }, wantErr: "batch_size"},
		{name: "pool checks skipped without dsn", mutate: func(c *Config) { c.Database.MaxConns = 0 }},
		{
			name:    "zero max conns with dsn",
			mutate:  func(c *Config) { c.Database.DSN = "postgres://x"; c.Database.MaxConns = 0 },
			wantErr: "max_conns",
		},
		{
			name:    "min conns above max",
			mutate:  func(c *Config) { c.Database.DSN = "postgres://x"; c.Database.MinConns = 9 },
			wantErr: "min_conns",
		},
		{
			name:    "zero timeout with dsn",
			mutate:  func(c *Config) { c.Database.DSN = "postgres://x"; c.Database.Timeout = 0 },
			wantErr: "timeout",
		},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "log: level"},
		{name: "log level case-insensitive", mutate: func(c *Config) { c.Log.Level = "DEBUG" }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log: format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		Source: SourceConfig{Dir: "./data"},
		Output: OutputConfig{Dir: "./out", Compression: CompressionXZ},
		Database: DatabaseConfig{
			MaxConns:  4,
			MinConns:  1,
			BatchSize: 1000,
			Timeout:   10 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}
