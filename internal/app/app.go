package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/syngdict/internal/adapter/artifact"
	"github.com/heartmarshall/syngdict/internal/adapter/postgres"
	"github.com/heartmarshall/syngdict/internal/adapter/postgres/dictstore"
	"github.com/heartmarshall/syngdict/internal/adapter/sqlite"
	"github.com/heartmarshall/syngdict/internal/app/compiler"
	"github.com/heartmarshall/syngdict/internal/config"
	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/service/lookup"
	"github.com/heartmarshall/syngdict/migrations"
)

// Compile-time interface assertions.
var (
	_ compiler.Sink            = (*artifact.Writer)(nil)
	_ compiler.DictionaryStore = (*dictstore.Repo)(nil)
	_ compiler.DictionaryStore = (*sqlite.Store)(nil)
	_ compiler.TxManager       = (*postgres.TxManager)(nil)
	_ compiler.TxManager       = (*sqlite.TxManager)(nil)
)

// Sink and lookup source names.
const (
	SinkSQLite  = "sqlite"
	SinkPublish = "publish"

	SourceArtifacts = "artifacts"
	SourceSQLite    = "sqlite"
	SourcePostgres  = "postgres"
)

// Compile runs the compiler pipeline: artifact files always, plus the SQLite
// file and the PostgreSQL publish when configured. The pipeline is returned
// even on error so callers can inspect results and diagnostics.
func Compile(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*compiler.Pipeline, error) {
	sinks := []compiler.Sink{artifact.NewWriter(cfg.Output.Dir, cfg.Output.Compression, logger)}

	if cfg.Output.SQLitePath != "" {
		db, err := sqlite.Open(ctx, cfg.Output.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		sinks = append(sinks, compiler.NewStoreSink(SinkSQLite,
			sqlite.NewStore(db), sqlite.NewTxManager(db), cfg.Database.BatchSize))
	}

	if cfg.Database.PublishEnabled() {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		sinks = append(sinks, compiler.NewStoreSink(SinkPublish,
			dictstore.New(pool), postgres.NewTxManager(pool), cfg.Database.BatchSize))
	}

	logger.Info("starting compile",
		slog.String("version", BuildVersion()),
		slog.String("source", cfg.Source.Dir),
		slog.String("output", cfg.Output.Dir),
		slog.Int("sinks", len(sinks)),
	)

	pipeline := compiler.NewPipeline(logger, compiler.NewLogObserver(logger), compiler.Config{
		SourceDir: cfg.Source.Dir,
		HSKPath:   cfg.Source.HSKPath,
		Strict:    cfg.Source.Strict,
		Version:   Version,
	}, sinks...)

	return pipeline, pipeline.Run(ctx)
}

// Search answers a query from the named source: the artifact directory, the
// SQLite file or the published PostgreSQL builds.
func Search(ctx context.Context, cfg *config.Config, logger *slog.Logger, from string, in lookup.SearchInput) ([]domain.WordEntry, error) {
	switch from {
	case SourceArtifacts, "":
		build, err := artifact.Load(cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded build", slog.String("build_id", build.ID.String()), slog.Int("entries", len(build.Dictionary.Data)))
		return lookup.NewService(logger, lookup.NewDictionarySource(build.Dictionary)).Search(ctx, in)

	case SourceSQLite:
		if cfg.Output.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path: required: %w", domain.ErrValidation)
		}
		db, err := sqlite.Open(ctx, cfg.Output.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return lookup.NewService(logger, sqlite.NewStore(db)).Search(ctx, in)

	case SourcePostgres:
		if !cfg.Database.PublishEnabled() {
			return nil, fmt.Errorf("database dsn: required: %w", domain.ErrValidation)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return lookup.NewService(logger, dictstore.New(pool)).Search(ctx, in)
	}

	return nil, fmt.Errorf("lookup source %q: %w", from, domain.ErrValidation)
}

// Migrate applies the embedded migrations to the configured target and
// returns how many were applied.
func Migrate(ctx context.Context, cfg *config.Config, target migrations.Target) (int, error) {
	switch target {
	case migrations.SQLite:
		if cfg.Output.SQLitePath == "" {
			return 0, fmt.Errorf("sqlite path: required: %w", domain.ErrValidation)
		}
		return sqlite.Migrate(ctx, cfg.Output.SQLitePath)
	case migrations.Postgres:
		if !cfg.Database.PublishEnabled() {
			return 0, fmt.Errorf("database dsn: required: %w", domain.ErrValidation)
		}
		return postgres.Migrate(ctx, cfg.Database.DSN)
	}
	return 0, fmt.Errorf("migration target %q: %w", target, domain.ErrValidation)
}
