// Package sqlite stores compiled dictionary builds in a single SQLite file
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/heartmarshall/syngdict/migrations"
)

const driverName = "sqlite"

// Open opens (creating if needed) the SQLite file at path, enables foreign
// keys and applies the embedded migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}

	if _, err := migrations.Up(ctx, migrations.SQLite, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}

	return db, nil
}

// Migrate applies pending migrations to the file at path and returns how
// many were applied.
func Migrate(ctx context.Context, path string) (int, error) {
	db, err := open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	n, err := migrations.Up(ctx, migrations.SQLite, db)
	if err != nil {
		return 0, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}
	return n, nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}
