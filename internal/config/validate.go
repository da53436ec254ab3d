package config

import (
	"fmt"
	"slices"
	"strings"
)

// Compression values accepted by output.compression.
const (
	CompressionXZ   = "xz"
	CompressionNone = "none"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading and after CLI overrides; Load calls it
// automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Dir) == "" {
		return fmt.Errorf("source.dir is required")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir is required")
	}
	if !slices.Contains([]string{CompressionXZ, CompressionNone}, c.Output.Compression) {
		return fmt.Errorf("output.compression must be %q or %q (got %q)", CompressionXZ, CompressionNone, c.Output.Compression)
	}

	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", d.BatchSize)
	}
	if !d.PublishEnabled() {
		return nil
	}
	if d.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be > 0 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("min_conns must be between 0 and max_conns (got %d)", d.MinConns)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", d.Timeout)
	}
	return nil
}

func (l *LogConfig) validate() error {
	if !slices.Contains(logLevels, strings.ToLower(l.Level)) {
		return fmt.Errorf("level must be one of %v (got %q)", logLevels, l.Level)
	}
	if !slices.Contains(logFormats, l.Format) {
		return fmt.Errorf("format must be one of %v (got %q)", logFormats, l.Format)
	}
	return nil
}
