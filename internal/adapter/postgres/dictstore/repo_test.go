package dictstore_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/syngdict/internal/adapter/postgres"
	"github.com/heartmarshall/syngdict/internal/adapter/postgres/dictstore"
	"github.com/heartmarshall/syngdict/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/syngdict/internal/app/compiler"
	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

func newRepo(t *testing.T) (*dictstore.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return dictstore.New(pool), pool
}

func makeBuild(t *testing.T, createdAt time.Time) domain.Build {
	t.Helper()
	dict, _, err := compiler.BuildDictionary([]domain.WordEntry{
		{
			Traditional: "你好", Simplified: "你好",
			PinyinMarks: "nǐ hǎo", PinyinNumbers: "ni3 hao3",
			English: []string{"hello", "hi"}, ToneMarks: []uint8{3, 3},
			HSK: 1, Hash: 0xfeedfacecafebeef,
		},
		{
			Traditional: "個", Simplified: "个",
			PinyinMarks: "gè", PinyinNumbers: "ge4",
			English: []string{"individual"}, ToneMarks: []uint8{4},
		},
		{
			Traditional: "人", Simplified: "人",
			PinyinMarks: "rén", PinyinNumbers: "ren2",
			English: []string{"person"}, ToneMarks: []uint8{2},
			MeasureWords: []domain.MeasureWord{
				{Traditional: "個", Simplified: "个", PinyinMarks: "gè", PinyinNumbers: "ge4"},
			},
			HSK: 1,
		},
	})
	if err != nil {
		t.Fatalf("BuildDictionary: %v", err)
	}
	return domain.Build{ID: uuid.New(), CreatedAt: createdAt, Version: "test", Dictionary: dict}
}

func publish(t *testing.T, pool *pgxpool.Pool, repo *dictstore.Repo, build domain.Build) {
	t.Helper()
	sink := compiler.NewStoreSink("publish", repo, postgres.NewTxManager(pool), 2)
	if _, err := sink.Write(context.Background(), build); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Write side
// ---------------------------------------------------------------------------

func TestRepo_CreateBuild_Duplicate(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	build := makeBuild(t, time.Now().UTC())
	if err := repo.CreateBuild(ctx, build); err != nil {
		t.Fatalf("first CreateBuild: %v", err)
	}

	err := repo.CreateBuild(ctx, build)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("second CreateBuild: expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_BulkInsertWords_Basic(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	build := makeBuild(t, time.Now().UTC())
	ctx := ctxutil.WithBuildID(context.Background(), build.ID)
	if err := repo.CreateBuild(ctx, build); err != nil {
		t.Fatalf("CreateBuild: %v", err)
	}

	inserted, err := repo.BulkInsertWords(ctx, build.Dictionary.Entries())
	if err != nil {
		t.Fatalf("BulkInsertWords: %v", err)
	}
	if inserted != 3 {
		t.Errorf("expected 3 inserted, got %d", inserted)
	}
}

func TestRepo_BulkInsertWords_MissingBuildID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.BulkInsertWords(context.Background(), []domain.WordEntry{{Traditional: "人"}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRepo_BulkInsertWords_UnknownBuild(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	ctx := ctxutil.WithBuildID(context.Background(), uuid.New())
	_, err := repo.BulkInsertWords(ctx, []domain.WordEntry{{Traditional: "人", Simplified: "人"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing build row, got %v", err)
	}
}

func TestRepo_BulkInsertIndexKeys_Empty(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	ctx := ctxutil.WithBuildID(context.Background(), uuid.New())
	n, err := repo.BulkInsertIndexKeys(ctx, domain.IndexPinyin, nil)
	if err != nil {
		t.Fatalf("BulkInsertIndexKeys: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 inserted, got %d", n)
	}
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

func TestRepo_Lookup_RoundTrip(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	build := makeBuild(t, time.Now().UTC())
	publish(t, pool, repo, build)

	ctx := ctxutil.WithBuildID(context.Background(), build.ID)

	got, err := repo.Lookup(ctx, domain.IndexPinyin, "nihao")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	want := build.Dictionary.Data[0]
	if got[0].Traditional != want.Traditional || got[0].PinyinMarks != want.PinyinMarks {
		t.Errorf("Lookup returned %+v, want %+v", got[0], want)
	}
	if !slices.Equal(got[0].English, want.English) {
		t.Errorf("English = %q, want %q", got[0].English, want.English)
	}
	if !slices.Equal(got[0].ToneMarks, want.ToneMarks) {
		t.Errorf("ToneMarks = %v, want %v", got[0].ToneMarks, want.ToneMarks)
	}
	if got[0].Hash != want.Hash {
		t.Errorf("Hash = %x, want %x", got[0].Hash, want.Hash)
	}
	if got[0].HSK != 1 {
		t.Errorf("HSK = %d, want 1", got[0].HSK)
	}
}

func TestRepo_Lookup_MeasureWords(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	build := makeBuild(t, time.Now().UTC())
	publish(t, pool, repo, build)

	ctx := ctxutil.WithBuildID(context.Background(), build.ID)

	got, err := repo.Lookup(ctx, domain.IndexSimplified, "人")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 1 || len(got[0].MeasureWords) != 1 {
		t.Fatalf("expected one entry with one measure word, got %+v", got)
	}
	if mw := got[0].MeasureWords[0]; mw.Simplified != "个" || mw.PinyinMarks != "gè" {
		t.Errorf("measure word = %+v", mw)
	}
	if got[0].WordID != 2 {
		t.Errorf("WordID = %d, want 2", got[0].WordID)
	}
}

func TestRepo_Lookup_MissingKey(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	build := makeBuild(t, time.Now().UTC())
	publish(t, pool, repo, build)

	ctx := ctxutil.WithBuildID(context.Background(), build.ID)

	got, err := repo.Lookup(ctx, domain.IndexEnglish, "nothing%20here")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %d", len(got))
	}
}

func TestRepo_LatestBuild(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	// Far in the future so parallel tests cannot publish a newer build.
	build := makeBuild(t, time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC))
	publish(t, pool, repo, build)

	latest, err := repo.LatestBuild(context.Background())
	if err != nil {
		t.Fatalf("LatestBuild: %v", err)
	}
	if latest.ID != build.ID {
		t.Errorf("LatestBuild ID = %s, want %s", latest.ID, build.ID)
	}
	if latest.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", latest.EntryCount)
	}

	// Without a build in context, Lookup falls back to the latest build.
	got, err := repo.Lookup(context.Background(), domain.IndexTraditional, "個")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 1 || got[0].Simplified != "个" {
		t.Errorf("Lookup via latest build = %+v", got)
	}
}
