// Package compiler defines interfaces and orchestration for turning
// dictionary sources into a compiled dictionary and its outputs.
package compiler

import (
	"context"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// Sink persists a completed build. Implemented by artifact.Writer and by
// StoreSink for database targets.
type Sink interface {
	// Name is the pipeline phase the sink runs as.
	Name() string
	// Write returns the number of records written.
	Write(ctx context.Context, build domain.Build) (int, error)
}

// DictionaryStore defines the batch repository contract consumed by StoreSink.
// All methods use only domain types. The build id is read from the context
// (ctxutil.WithBuildID). Implemented by postgres/dictstore.Repo and
// sqlite.Store.
type DictionaryStore interface {
	CreateBuild(ctx context.Context, build domain.Build) error
	BulkInsertWords(ctx context.Context, words []domain.WordEntry) (int, error)
	BulkInsertIndexKeys(ctx context.Context, kind domain.IndexKind, postings []domain.Posting) (int, error)
}

// TxManager runs fn inside a single database transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
