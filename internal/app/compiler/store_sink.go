package compiler

import (
	"context"
	"fmt"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

const defaultBatchSize = 500

// StoreSink writes a build into a DictionaryStore in one transaction:
// the build row, the primary store, then each index, in batches.
type StoreSink struct {
	name      string
	store     DictionaryStore
	tx        TxManager
	batchSize int
}

// NewStoreSink creates a StoreSink that runs as the given phase.
func NewStoreSink(name string, store DictionaryStore, tx TxManager, batchSize int) *StoreSink {
	return &StoreSink{name: name, store: store, tx: tx, batchSize: batchSize}
}

func (s *StoreSink) Name() string { return s.name }

func (s *StoreSink) Write(ctx context.Context, build domain.Build) (int, error) {
	ctx = ctxutil.WithBuildID(ctx, build.ID)

	total := 0
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		total = 0

		if err := s.store.CreateBuild(ctx, build); err != nil {
			return fmt.Errorf("create build: %w", err)
		}

		n, err := batchProcess(build.Dictionary.Entries(), s.batchSize, func(batch []domain.WordEntry) (int, error) {
			return s.store.BulkInsertWords(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("insert words: %w", err)
		}
		total += n

		for _, kind := range domain.AllIndexKinds {
			n, err := batchProcess(build.Dictionary.Index(kind).Postings(), s.batchSize, func(batch []domain.Posting) (int, error) {
				return s.store.BulkInsertIndexKeys(ctx, kind, batch)
			})
			if err != nil {
				return fmt.Errorf("insert %s keys: %w", kind, err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
