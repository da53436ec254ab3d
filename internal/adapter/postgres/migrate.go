package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/heartmarshall/syngdict/migrations"
)

// Migrate applies pending goose migrations to the database at dsn and
// returns how many were applied. goose requires *sql.DB, so this opens a
// separate database/sql handle instead of using the pool.
func Migrate(ctx context.Context, dsn string) (int, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("db ping: %w", err)
	}

	n, err := migrations.Up(ctx, migrations.Postgres, db)
	if err != nil {
		return 0, fmt.Errorf("migrate postgres: %w", err)
	}
	return n, nil
}
