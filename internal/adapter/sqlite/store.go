package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

// timeLayout has fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// maxVariables is SQLite's default SQLITE_MAX_VARIABLE_NUMBER.
const maxVariables = 32766

const (
	tableBuilds    = "dict_builds"
	tableWords     = "dict_words"
	tableIndexKeys = "dict_index_keys"
)

var wordColumns = []string{
	"word_id", "traditional", "simplified", "pinyin_marks", "pinyin_numbers",
	"english", "tone_marks", "measure_words", "hsk", "content_hash",
}

// measureWordRow is the JSON shape of a measure word.
type measureWordRow struct {
	Traditional   string `json:"traditional"`
	Simplified    string `json:"simplified"`
	PinyinMarks   string `json:"pinyin_marks"`
	PinyinNumbers string `json:"pinyin_numbers"`
}

// Store implements the dictionary batch store and lookups over SQLite.
// Arrays are stored as JSON text.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewStore creates a Store over an opened, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

// CreateBuild inserts the dict_builds row for build.
func (s *Store) CreateBuild(ctx context.Context, build domain.Build) error {
	entryCount := 0
	if build.Dictionary != nil {
		entryCount = len(build.Dictionary.Data)
	}

	_, err := s.sb.Insert(tableBuilds).
		Columns("id", "version", "entry_count", "created_at").
		Values(build.ID.String(), build.Version, entryCount, build.CreatedAt.UTC().Format(timeLayout)).
		RunWith(QuerierFromCtx(ctx, s.db)).
		ExecContext(ctx)
	if err != nil {
		return MapError(err, tableBuilds, build.ID)
	}
	return nil
}

// BulkInsertWords inserts dict_words rows for the build in the context.
// Returns the number of inserted rows.
func (s *Store) BulkInsertWords(ctx context.Context, words []domain.WordEntry) (int, error) {
	buildID, err := buildIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if len(words) == 0 {
		return 0, nil
	}

	columns := append([]string{"build_id"}, wordColumns...)
	rows := make([][]any, 0, len(words))
	for i := range words {
		w := &words[i]
		english, tones, measures, err := encodeWordArrays(w)
		if err != nil {
			return 0, fmt.Errorf("word %d: %w", w.WordID, err)
		}
		rows = append(rows, []any{
			buildID.String(), int64(w.WordID), w.Traditional, w.Simplified, w.PinyinMarks, w.PinyinNumbers,
			english, tones, measures, int(w.HSK), int64(w.Hash),
		})
	}

	return s.insertRows(ctx, tableWords, columns, rows, buildID)
}

// BulkInsertIndexKeys inserts one dict_index_keys row per posting.
func (s *Store) BulkInsertIndexKeys(ctx context.Context, kind domain.IndexKind, postings []domain.Posting) (int, error) {
	buildID, err := buildIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if len(postings) == 0 {
		return 0, nil
	}

	columns := []string{"build_id", "kind", "key", "word_ids"}
	rows := make([][]any, 0, len(postings))
	for _, p := range postings {
		ids, err := json.Marshal(p.IDs)
		if err != nil {
			return 0, fmt.Errorf("encode word ids of %q: %w", p.Key, err)
		}
		rows = append(rows, []any{buildID.String(), string(kind), p.Key, string(ids)})
	}

	return s.insertRows(ctx, tableIndexKeys, columns, rows, buildID)
}

// insertRows writes rows with multi-row INSERTs, splitting them so no
// statement binds more than maxVariables parameters.
func (s *Store) insertRows(ctx context.Context, table string, columns []string, rows [][]any, buildID uuid.UUID) (int, error) {
	perStatement := rowsPerStatement(len(columns))

	var inserted int
	for start := 0; start < len(rows); start += perStatement {
		end := min(start+perStatement, len(rows))

		insert := s.sb.Insert(table).Columns(columns...)
		for _, row := range rows[start:end] {
			insert = insert.Values(row...)
		}

		res, err := insert.RunWith(QuerierFromCtx(ctx, s.db)).ExecContext(ctx)
		if err != nil {
			return inserted, MapError(err, table, buildID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("%s rows affected: %w", table, err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

// rowsPerStatement is how many rows of the given width fit in one INSERT.
func rowsPerStatement(columns int) int {
	if columns <= 0 {
		return 1
	}
	return max(maxVariables/columns, 1)
}

// LatestBuildID returns the id of the most recently created build.
func (s *Store) LatestBuildID(ctx context.Context) (uuid.UUID, error) {
	var raw string
	err := s.sb.Select("id").
		From(tableBuilds).
		OrderBy("created_at DESC").
		Limit(1).
		RunWith(QuerierFromCtx(ctx, s.db)).
		QueryRowContext(ctx).
		Scan(&raw)
	if err != nil {
		return uuid.Nil, MapError(err, tableBuilds, uuid.Nil)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("build id %q: %w", raw, err)
	}
	return id, nil
}

// Lookup returns the entries filed under key in the kind index, in bucket
// order. The build is taken from the context; without one the latest build
// is used. A missing key yields an empty result.
func (s *Store) Lookup(ctx context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error) {
	buildID, ok := ctxutil.BuildIDFromCtx(ctx)
	if !ok {
		latest, err := s.LatestBuildID(ctx)
		if err != nil {
			return nil, err
		}
		buildID = latest
	}

	q := QuerierFromCtx(ctx, s.db)

	var rawIDs string
	err := s.sb.Select("word_ids").
		From(tableIndexKeys).
		Where(sq.Eq{"build_id": buildID.String(), "kind": string(kind), "key": key}).
		RunWith(q).
		QueryRowContext(ctx).
		Scan(&rawIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, MapError(err, tableIndexKeys, buildID)
	}

	var ids []uint32
	if err := json.Unmarshal([]byte(rawIDs), &ids); err != nil {
		return nil, fmt.Errorf("decode word ids of %q: %w", key, err)
	}

	words, err := s.wordsByID(ctx, q, buildID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.WordEntry, 0, len(ids))
	for _, id := range ids {
		w, ok := words[id]
		if !ok {
			return nil, fmt.Errorf("word %d of key %q: %w", id, key, domain.ErrNotFound)
		}
		out = append(out, w)
	}
	return out, nil
}

func (s *Store) wordsByID(ctx context.Context, q Querier, buildID uuid.UUID, ids []uint32) (map[uint32]domain.WordEntry, error) {
	wordIDs := make([]int64, len(ids))
	for i, id := range ids {
		wordIDs[i] = int64(id)
	}

	words := make(map[uint32]domain.WordEntry, len(ids))
	// One variable of each statement is taken by build_id.
	for chunk := range slices.Chunk(wordIDs, maxVariables-1) {
		query, args, err := s.sb.Select(wordColumns...).
			From(tableWords).
			Where(sq.Eq{"build_id": buildID.String(), "word_id": chunk}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("words query: %w", err)
		}

		var rows []wordRow
		if err := sqlscan.Select(ctx, q, &rows, query, args...); err != nil {
			return nil, MapError(err, tableWords, buildID)
		}

		for _, row := range rows {
			w, err := row.toDomain()
			if err != nil {
				return nil, fmt.Errorf("word %d: %w", row.WordID, err)
			}
			words[w.WordID] = w
		}
	}
	return words, nil
}

// wordRow is one dict_words row as scanned by sqlscan. Array columns hold
// JSON text.
type wordRow struct {
	WordID        int64  `db:"word_id"`
	Traditional   string `db:"traditional"`
	Simplified    string `db:"simplified"`
	PinyinMarks   string `db:"pinyin_marks"`
	PinyinNumbers string `db:"pinyin_numbers"`
	English       string `db:"english"`
	ToneMarks     string `db:"tone_marks"`
	MeasureWords  string `db:"measure_words"`
	HSK           int    `db:"hsk"`
	ContentHash   int64  `db:"content_hash"`
}

func (r *wordRow) toDomain() (domain.WordEntry, error) {
	w := domain.WordEntry{
		WordID:        uint32(r.WordID),
		Traditional:   r.Traditional,
		Simplified:    r.Simplified,
		PinyinMarks:   r.PinyinMarks,
		PinyinNumbers: r.PinyinNumbers,
		HSK:           uint8(r.HSK),
		Hash:          uint64(r.ContentHash),
	}

	if err := json.Unmarshal([]byte(r.English), &w.English); err != nil {
		return domain.WordEntry{}, fmt.Errorf("decode english: %w", err)
	}
	if len(w.English) == 0 {
		w.English = nil
	}

	var tones []int
	if err := json.Unmarshal([]byte(r.ToneMarks), &tones); err != nil {
		return domain.WordEntry{}, fmt.Errorf("decode tone marks: %w", err)
	}
	for _, t := range tones {
		w.ToneMarks = append(w.ToneMarks, uint8(t))
	}

	var mws []measureWordRow
	if err := json.Unmarshal([]byte(r.MeasureWords), &mws); err != nil {
		return domain.WordEntry{}, fmt.Errorf("decode measure words: %w", err)
	}
	for _, m := range mws {
		w.MeasureWords = append(w.MeasureWords, domain.MeasureWord(m))
	}

	return w, nil
}

// encodeWordArrays renders the array columns of w as JSON text. Tone marks
// are widened to int so they encode as numbers rather than base64.
func encodeWordArrays(w *domain.WordEntry) (english, tones, measures string, err error) {
	glosses := w.English
	if glosses == nil {
		glosses = []string{}
	}
	b, err := json.Marshal(glosses)
	if err != nil {
		return "", "", "", fmt.Errorf("encode english: %w", err)
	}
	english = string(b)

	toneInts := make([]int, len(w.ToneMarks))
	for i, t := range w.ToneMarks {
		toneInts[i] = int(t)
	}
	if b, err = json.Marshal(toneInts); err != nil {
		return "", "", "", fmt.Errorf("encode tone marks: %w", err)
	}
	tones = string(b)

	rows := make([]measureWordRow, len(w.MeasureWords))
	for i, m := range w.MeasureWords {
		rows[i] = measureWordRow(m)
	}
	if b, err = json.Marshal(rows); err != nil {
		return "", "", "", fmt.Errorf("encode measure words: %w", err)
	}
	measures = string(b)

	return english, tones, measures, nil
}

func buildIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctxutil.BuildIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("build id missing from context: %w", domain.ErrValidation)
	}
	return id, nil
}
