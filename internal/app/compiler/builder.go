package compiler

import (
	"fmt"
	"math"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// BuildStats summarizes a built dictionary.
type BuildStats struct {
	Entries int
	Keys    map[domain.IndexKind]int // distinct keys per index
	Refs    int                      // ids appended across all indices
}

// BuildDictionary assigns word ids in slice order starting at 0, overwriting
// any id already present, and fills the primary store and the four indices.
// Within one entry a key is added to an index at most once.
func BuildDictionary(entries []domain.WordEntry) (*domain.Dictionary, BuildStats, error) {
	if uint64(len(entries)) > math.MaxUint32 {
		return nil, BuildStats{}, fmt.Errorf("%d entries exceed the id space: %w", len(entries), domain.ErrValidation)
	}

	dict := domain.NewDictionary()
	stats := BuildStats{Entries: len(entries)}

	for i := range entries {
		e := entries[i]
		e.WordID = uint32(i)

		stats.Refs += addKeys(dict.Traditional, e.WordID, []string{e.Traditional})
		stats.Refs += addKeys(dict.Simplified, e.WordID, []string{e.Simplified})
		stats.Refs += addKeys(dict.Pinyin, e.WordID, domain.PinyinSearchKeys(e.PinyinMarks, e.PinyinNumbers))
		stats.Refs += addKeys(dict.English, e.WordID, domain.EnglishSearchKeys(e.English))

		dict.Data[e.WordID] = e
	}

	stats.Keys = make(map[domain.IndexKind]int, len(domain.AllIndexKinds))
	for _, kind := range domain.AllIndexKinds {
		stats.Keys[kind] = len(dict.Index(kind))
	}
	return dict, stats, nil
}

// addKeys appends id under each distinct non-empty key and returns how many
// ids were appended.
func addKeys(ix domain.Index, id uint32, keys []string) int {
	added := 0
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ix.Add(k, id)
		added++
	}
	return added
}
