package testhelper

import "testing"

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	id := SeedBuild(t, pool)

	if !BuildExists(t, pool, id) {
		t.Fatalf("expected build %s in DB", id)
	}
}
