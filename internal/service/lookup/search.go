package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// SearchInput holds the parameters of a dictionary search.
type SearchInput struct {
	Kind  domain.IndexKind
	Query string
	Limit int // 0 means no limit
}

// Validate checks the input fields.
func (i *SearchInput) Validate() error {
	if _, err := domain.ParseIndexKind(string(i.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(i.Query) == "" {
		return fmt.Errorf("query: required: %w", domain.ErrValidation)
	}
	if i.Limit < 0 {
		return fmt.Errorf("limit: must not be negative: %w", domain.ErrValidation)
	}
	return nil
}

// QueryKey normalizes free-form input into the key form stored in the kind
// index. Character forms are used verbatim.
func QueryKey(kind domain.IndexKind, query string) string {
	switch kind {
	case domain.IndexPinyin:
		return domain.PinyinQueryKey(query)
	case domain.IndexEnglish:
		return domain.EnglishQueryKey(query)
	default:
		return query
	}
}

// Search normalizes the query for the requested index and returns the
// matching entries in bucket order. No match yields an empty slice.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]domain.WordEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	key := QueryKey(in.Kind, in.Query)
	if key == "" {
		return []domain.WordEntry{}, nil
	}

	entries, err := s.source.Lookup(ctx, in.Kind, key)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %q: %w", in.Kind, key, err)
	}

	if in.Limit > 0 && len(entries) > in.Limit {
		entries = entries[:in.Limit]
	}
	if entries == nil {
		entries = []domain.WordEntry{}
	}

	s.log.DebugContext(ctx, "search", "kind", in.Kind, "key", key, "results", len(entries))
	return entries, nil
}
