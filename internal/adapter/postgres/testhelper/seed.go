package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedBuild inserts an empty dict_builds row and returns its id.
func SeedBuild(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO dict_builds (id, version, entry_count, created_at) VALUES ($1, $2, $3, $4)`,
		id, "test", 0, time.Now().UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedBuild: %v", err)
	}
	return id
}

// BuildExists reports whether a dict_builds row with id exists.
func BuildExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()

	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM dict_builds WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("testhelper: BuildExists: %v", err)
	}
	return exists
}
