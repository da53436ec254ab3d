package config

import "time"

// Config is the root compiler configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig describes where dictionary sources are read from.
type SourceConfig struct {
	Dir     string `yaml:"dir"      env:"SOURCE_DIR"      env-default:"./data"`
	HSKPath string `yaml:"hsk_path" env:"SOURCE_HSK_PATH"`
	Strict  bool   `yaml:"strict"   env:"SOURCE_STRICT"   env-default:"false"`
}

// OutputConfig describes where compiled artifacts are written.
type OutputConfig struct {
	Dir         string `yaml:"dir"         env:"OUTPUT_DIR"         env-default:"./out"`
	Compression string `yaml:"compression" env:"OUTPUT_COMPRESSION" env-default:"xz"`
	SQLitePath  string `yaml:"sqlite_path" env:"OUTPUT_SQLITE_PATH"`
}

// DatabaseConfig holds PostgreSQL settings for publishing builds.
// Publishing is disabled while DSN is empty.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	BatchSize       int           `yaml:"batch_size"         env:"DATABASE_BATCH_SIZE"         env-default:"1000"`
	Timeout         time.Duration `yaml:"timeout"            env:"DATABASE_TIMEOUT"            env-default:"10m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// PublishEnabled reports whether a PostgreSQL target is configured.
func (c DatabaseConfig) PublishEnabled() bool {
	return c.DSN != ""
}
