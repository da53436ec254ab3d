package lookup

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockSource struct {
	LookupFunc func(ctx context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error)
	calls      []string
}

func (m *mockSource) Lookup(ctx context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error) {
	m.calls = append(m.calls, string(kind)+":"+key)
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, kind, key)
	}
	return nil, nil
}

func testDictionary() *domain.Dictionary {
	d := domain.NewDictionary()
	entries := []domain.WordEntry{
		{Traditional: "你好", Simplified: "你好", PinyinMarks: "nǐ hǎo", PinyinNumbers: "ni3 hao3", English: []string{"hello"}},
		{Traditional: "吃", Simplified: "吃", PinyinMarks: "chī", PinyinNumbers: "chi1", English: []string{"to eat (food)"}},
		{Traditional: "書", Simplified: "书", PinyinMarks: "shū", PinyinNumbers: "shu1", English: []string{"book"}},
		{Traditional: "輸", Simplified: "输", PinyinMarks: "shū", PinyinNumbers: "shu1", English: []string{"to lose"}},
	}
	for i, e := range entries {
		e.WordID = uint32(i)
		d.Data[e.WordID] = e
		d.Traditional.Add(e.Traditional, e.WordID)
		d.Simplified.Add(e.Simplified, e.WordID)
		for _, k := range domain.PinyinSearchKeys(e.PinyinMarks, e.PinyinNumbers) {
			d.Pinyin.Add(k, e.WordID)
		}
		for _, k := range domain.EnglishSearchKeys(e.English) {
			d.English.Add(k, e.WordID)
		}
	}
	return d
}

func newTestService(src source) *Service {
	return NewService(slog.Default(), src)
}

// ===========================================================================
// Search
// ===========================================================================

func TestSearch_NormalizesQueryPerKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    domain.IndexKind
		query   string
		wantKey string
	}{
		{"pinyin spaces and case", domain.IndexPinyin, "Ni3 Hao3", "pinyin:ni3hao3"},
		{"pinyin marks", domain.IndexPinyin, "nǐ hǎo", "pinyin:nǐhǎo"},
		{"english primary key", domain.IndexEnglish, "To Eat (food)!", "english:to%20eat"},
		{"traditional verbatim", domain.IndexTraditional, "書", "traditional:書"},
		{"simplified verbatim", domain.IndexSimplified, " 书", "simplified: 书"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &mockSource{}
			svc := newTestService(src)

			_, err := svc.Search(context.Background(), SearchInput{Kind: tt.kind, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantKey}, src.calls)
		})
	}
}

func TestSearch_DictionarySource_EveryKind(t *testing.T) {
	t.Parallel()

	svc := newTestService(NewDictionarySource(testDictionary()))
	ctx := context.Background()

	tests := []struct {
		kind  domain.IndexKind
		query string
		want  []string // simplified forms in bucket order
	}{
		{domain.IndexPinyin, "shu", []string{"书", "输"}},
		{domain.IndexPinyin, "SHU1", []string{"书", "输"}},
		{domain.IndexPinyin, "nǐhǎo", []string{"你好"}},
		{domain.IndexEnglish, "eat", []string{"吃"}},
		{domain.IndexEnglish, "to eat", []string{"吃"}},
		{domain.IndexEnglish, "lose", []string{"输"}},
		{domain.IndexTraditional, "書", []string{"书"}},
		{domain.IndexSimplified, "你好", []string{"你好"}},
	}
	for _, tt := range tests {
		got, err := svc.Search(ctx, SearchInput{Kind: tt.kind, Query: tt.query})
		require.NoError(t, err, "%s %q", tt.kind, tt.query)

		var simplified []string
		for _, e := range got {
			simplified = append(simplified, e.Simplified)
		}
		assert.Equal(t, tt.want, simplified, "%s %q", tt.kind, tt.query)
	}
}

func TestSearch_NoMatchReturnsEmpty(t *testing.T) {
	t.Parallel()

	svc := newTestService(NewDictionarySource(testDictionary()))

	got, err := svc.Search(context.Background(), SearchInput{Kind: domain.IndexEnglish, Query: "zebra"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_QueryNormalizedToEmpty(t *testing.T) {
	t.Parallel()

	src := &mockSource{}
	svc := newTestService(src)

	got, err := svc.Search(context.Background(), SearchInput{Kind: domain.IndexEnglish, Query: "(only a note)"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, src.calls)
}

func TestSearch_Limit(t *testing.T) {
	t.Parallel()

	svc := newTestService(NewDictionarySource(testDictionary()))

	got, err := svc.Search(context.Background(), SearchInput{Kind: domain.IndexPinyin, Query: "shu", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "书", got[0].Simplified)
}

func TestSearch_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   SearchInput
	}{
		{"unknown kind", SearchInput{Kind: "radical", Query: "x"}},
		{"empty query", SearchInput{Kind: domain.IndexPinyin, Query: "  "}},
		{"negative limit", SearchInput{Kind: domain.IndexPinyin, Query: "x", Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &mockSource{}
			svc := newTestService(src)

			_, err := svc.Search(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, src.calls)
		})
	}
}

func TestSearch_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	src := &mockSource{
		LookupFunc: func(context.Context, domain.IndexKind, string) ([]domain.WordEntry, error) {
			return nil, boom
		},
	}
	svc := newTestService(src)

	_, err := svc.Search(context.Background(), SearchInput{Kind: domain.IndexPinyin, Query: "ni"})
	assert.ErrorIs(t, err, boom)
}
