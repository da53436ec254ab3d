// Package migrations embeds the goose migrations for every supported
// database and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Target names a database flavour.
type Target string

const (
	Postgres Target = "postgres"
	SQLite   Target = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// FS returns the migration files for target.
func FS(target Target) (fs.FS, error) {
	switch target {
	case Postgres, SQLite:
		return fs.Sub(files, string(target))
	}
	return nil, fmt.Errorf("unknown migration target %q", target)
}

// NewProvider returns a goose provider for target over db.
func NewProvider(target Target, db *sql.DB) (*goose.Provider, error) {
	fsys, err := FS(target)
	if err != nil {
		return nil, err
	}

	dialect := goose.DialectPostgres
	if target == SQLite {
		dialect = goose.DialectSQLite3
	}

	// goose.NewProvider handles $$-delimited bodies, unlike the legacy goose.Up.
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration and returns how many were applied.
func Up(ctx context.Context, target Target, db *sql.DB) (int, error) {
	provider, err := NewProvider(target, db)
	if err != nil {
		return 0, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}
