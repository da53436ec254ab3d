// Package dictstore publishes compiled dictionary builds to PostgreSQL and
// answers lookups against the published rows.
package dictstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/syngdict/internal/adapter/postgres"
	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

const (
	tableBuilds    = "dict_builds"
	tableWords     = "dict_words"
	tableIndexKeys = "dict_index_keys"
)

var wordColumns = []string{
	"word_id", "traditional", "simplified", "pinyin_marks", "pinyin_numbers",
	"english", "tone_marks", "measure_words", "hsk", "content_hash",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// measureWordRow is the jsonb shape of a measure word.
type measureWordRow struct {
	Traditional   string `json:"traditional"`
	Simplified    string `json:"simplified"`
	PinyinMarks   string `json:"pinyin_marks"`
	PinyinNumbers string `json:"pinyin_numbers"`
}

// wordRow is one dict_words row as scanned by pgxscan.
type wordRow struct {
	WordID        int64            `db:"word_id"`
	Traditional   string           `db:"traditional"`
	Simplified    string           `db:"simplified"`
	PinyinMarks   string           `db:"pinyin_marks"`
	PinyinNumbers string           `db:"pinyin_numbers"`
	English       []string         `db:"english"`
	ToneMarks     []int16          `db:"tone_marks"`
	MeasureWords  []measureWordRow `db:"measure_words"`
	HSK           int16            `db:"hsk"`
	ContentHash   int64            `db:"content_hash"`
}

func (r *wordRow) toDomain() domain.WordEntry {
	w := domain.WordEntry{
		WordID:        uint32(r.WordID),
		Traditional:   r.Traditional,
		Simplified:    r.Simplified,
		PinyinMarks:   r.PinyinMarks,
		PinyinNumbers: r.PinyinNumbers,
		ToneMarks:     int16ToToneMarks(r.ToneMarks),
		MeasureWords:  fromMeasureWordRows(r.MeasureWords),
		HSK:           uint8(r.HSK),
		Hash:          uint64(r.ContentHash),
	}
	if len(r.English) > 0 {
		w.English = r.English
	}
	return w
}

// BuildInfo describes a published build.
type BuildInfo struct {
	ID         uuid.UUID
	Version    string
	EntryCount int
	CreatedAt  time.Time
}

// Repo provides dictionary persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dictionary repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Write side
// ---------------------------------------------------------------------------

// CreateBuild inserts the dict_builds row for build.
func (r *Repo) CreateBuild(ctx context.Context, build domain.Build) error {
	entryCount := 0
	if build.Dictionary != nil {
		entryCount = len(build.Dictionary.Data)
	}

	query, args, err := psql.Insert(tableBuilds).
		Columns("id", "version", "entry_count", "created_at").
		Values(build.ID, build.Version, entryCount, build.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, tableBuilds, build.ID)
	}
	return nil
}

// BulkInsertWords inserts dict_words rows for the build in the context using
// pgx.Batch. Returns the number of inserted rows.
func (r *Repo) BulkInsertWords(ctx context.Context, words []domain.WordEntry) (int, error) {
	buildID, err := buildIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range words {
		w := &words[i]
		query, args, err := psql.Insert(tableWords).
			Columns(append([]string{"build_id"}, wordColumns...)...).
			Values(
				buildID, int64(w.WordID), w.Traditional, w.Simplified, w.PinyinMarks, w.PinyinNumbers,
				nonNilStrings(w.English), toneMarksToInt16(w.ToneMarks), toMeasureWordRows(w.MeasureWords),
				int16(w.HSK), int64(w.Hash),
			).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("word insert query: %w", err)
		}
		batch.Queue(query, args...)
	}

	n, err := r.sendBatchExec(ctx, batch)
	if err != nil {
		return n, postgres.MapError(err, tableWords, buildID)
	}
	return n, nil
}

// BulkInsertIndexKeys inserts one dict_index_keys row per posting.
func (r *Repo) BulkInsertIndexKeys(ctx context.Context, kind domain.IndexKind, postings []domain.Posting) (int, error) {
	buildID, err := buildIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if len(postings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range postings {
		query, args, err := psql.Insert(tableIndexKeys).
			Columns("build_id", "kind", "key", "word_ids").
			Values(buildID, string(kind), p.Key, idsToInt64(p.IDs)).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("index key insert query: %w", err)
		}
		batch.Queue(query, args...)
	}

	n, err := r.sendBatchExec(ctx, batch)
	if err != nil {
		return n, postgres.MapError(err, tableIndexKeys, buildID)
	}
	return n, nil
}

// sendBatchExec sends a pgx.Batch and counts affected rows from Exec results.
func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// LatestBuild returns the most recently published build.
func (r *Repo) LatestBuild(ctx context.Context) (BuildInfo, error) {
	query, args, err := psql.Select("id", "version", "entry_count", "created_at").
		From(tableBuilds).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return BuildInfo{}, fmt.Errorf("latest build query: %w", err)
	}

	var b BuildInfo
	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Version, &b.EntryCount, &b.CreatedAt); err != nil {
		return BuildInfo{}, postgres.MapError(err, tableBuilds, uuid.Nil)
	}
	return b, nil
}

// Lookup returns the entries filed under key in the kind index, in bucket
// order. The build is taken from the context; without one the latest build
// is used. A missing key yields an empty result, not an error.
func (r *Repo) Lookup(ctx context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error) {
	buildID, ok := ctxutil.BuildIDFromCtx(ctx)
	if !ok {
		latest, err := r.LatestBuild(ctx)
		if err != nil {
			return nil, err
		}
		buildID = latest.ID
	}

	query, args, err := psql.Select("word_ids").
		From(tableIndexKeys).
		Where(sq.Eq{"build_id": buildID, "kind": string(kind), "key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("index key query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var ids []int64
	if err := q.QueryRow(ctx, query, args...).Scan(&ids); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, postgres.MapError(err, tableIndexKeys, buildID)
	}

	words, err := r.wordsByID(ctx, q, buildID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.WordEntry, 0, len(ids))
	for _, id := range ids {
		w, ok := words[uint32(id)]
		if !ok {
			return nil, fmt.Errorf("word %d of key %q: %w", id, key, domain.ErrNotFound)
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *Repo) wordsByID(ctx context.Context, q postgres.Querier, buildID uuid.UUID, ids []int64) (map[uint32]domain.WordEntry, error) {
	query, args, err := psql.Select(wordColumns...).
		From(tableWords).
		Where(sq.Eq{"build_id": buildID, "word_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("words query: %w", err)
	}

	var rows []wordRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, tableWords, buildID)
	}

	words := make(map[uint32]domain.WordEntry, len(rows))
	for _, row := range rows {
		w := row.toDomain()
		words[w.WordID] = w
	}
	return words, nil
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func buildIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctxutil.BuildIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("build id missing from context: %w", domain.ErrValidation)
	}
	return id, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toneMarksToInt16(tones []uint8) []int16 {
	out := make([]int16, len(tones))
	for i, t := range tones {
		out[i] = int16(t)
	}
	return out
}

func int16ToToneMarks(tones []int16) []uint8 {
	if len(tones) == 0 {
		return nil
	}
	out := make([]uint8, len(tones))
	for i, t := range tones {
		out[i] = uint8(t)
	}
	return out
}

func toMeasureWordRows(mws []domain.MeasureWord) []measureWordRow {
	out := make([]measureWordRow, len(mws))
	for i, m := range mws {
		out[i] = measureWordRow(m)
	}
	return out
}

func fromMeasureWordRows(rows []measureWordRow) []domain.MeasureWord {
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.MeasureWord, len(rows))
	for i, m := range rows {
		out[i] = domain.MeasureWord(m)
	}
	return out
}

func idsToInt64(ids []uint32) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
