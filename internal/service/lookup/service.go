// Package lookup answers word queries against a compiled dictionary.
package lookup

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

// source resolves an already normalized key. Implemented by DictionarySource,
// sqlite.Store and dictstore.Repo.
type source interface {
	Lookup(ctx context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error)
}

// Service implements dictionary lookups.
type Service struct {
	log    *slog.Logger
	source source
}

// NewService creates a new lookup service.
func NewService(logger *slog.Logger, src source) *Service {
	return &Service{
		log:    logger.With("service", "lookup"),
		source: src,
	}
}

// DictionarySource serves lookups from an in-memory dictionary, typically
// one returned by artifact.Load.
type DictionarySource struct {
	dict *domain.Dictionary
}

// NewDictionarySource wraps dict.
func NewDictionarySource(dict *domain.Dictionary) *DictionarySource {
	return &DictionarySource{dict: dict}
}

// Lookup implements the source contract. It never fails.
func (s *DictionarySource) Lookup(_ context.Context, kind domain.IndexKind, key string) ([]domain.WordEntry, error) {
	return s.dict.Lookup(kind, key), nil
}
