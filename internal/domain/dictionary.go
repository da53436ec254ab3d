package domain

import (
	"fmt"
	"slices"
)

// IndexKind names one of the four inverted indices.
type IndexKind string

const (
	IndexPinyin      IndexKind = "pinyin"
	IndexEnglish     IndexKind = "english"
	IndexTraditional IndexKind = "traditional"
	IndexSimplified  IndexKind = "simplified"
)

// AllIndexKinds lists the indices in the order they are written out.
var AllIndexKinds = []IndexKind{IndexPinyin, IndexEnglish, IndexTraditional, IndexSimplified}

// ParseIndexKind validates s as an IndexKind.
func ParseIndexKind(s string) (IndexKind, error) {
	k := IndexKind(s)
	if !slices.Contains(AllIndexKinds, k) {
		return "", fmt.Errorf("index kind %q: %w", s, ErrValidation)
	}
	return k, nil
}

// Index maps a search key to the ids of the entries it was derived from,
// in insertion order.
type Index map[string][]uint32

// Add appends id to the bucket for key.
func (ix Index) Add(key string, id uint32) {
	ix[key] = append(ix[key], id)
}

// Postings returns the index as (key, ids) pairs sorted by key.
func (ix Index) Postings() []Posting {
	keys := make([]string, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Posting, len(keys))
	for i, k := range keys {
		out[i] = Posting{Key: k, IDs: ix[k]}
	}
	return out
}

// Posting is one bucket of an inverted index.
type Posting struct {
	Key string
	IDs []uint32
}

// Dictionary is the compiled dictionary: the primary store plus four
// inverted indices. Data is the only owner of WordEntry values.
type Dictionary struct {
	Pinyin      Index
	English     Index
	Traditional Index
	Simplified  Index
	Data        map[uint32]WordEntry
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		Pinyin:      make(Index),
		English:     make(Index),
		Traditional: make(Index),
		Simplified:  make(Index),
		Data:        make(map[uint32]WordEntry),
	}
}

// Index returns the inverted index of the given kind.
func (d *Dictionary) Index(kind IndexKind) Index {
	switch kind {
	case IndexPinyin:
		return d.Pinyin
	case IndexEnglish:
		return d.English
	case IndexTraditional:
		return d.Traditional
	case IndexSimplified:
		return d.Simplified
	}
	return nil
}

// Entries returns the primary store ordered by word id.
func (d *Dictionary) Entries() []WordEntry {
	ids := make([]uint32, 0, len(d.Data))
	for id := range d.Data {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]WordEntry, len(ids))
	for i, id := range ids {
		out[i] = d.Data[id]
	}
	return out
}

// Lookup resolves the bucket for key in the given index to entries.
// Ids missing from the primary store are skipped.
func (d *Dictionary) Lookup(kind IndexKind, key string) []WordEntry {
	ix := d.Index(kind)
	if ix == nil {
		return nil
	}
	ids := ix[key]
	out := make([]WordEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := d.Data[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// CheckIntegrity verifies that every id referenced by any index is a key
// of the primary store.
func (d *Dictionary) CheckIntegrity() error {
	for _, kind := range AllIndexKinds {
		for key, ids := range d.Index(kind) {
			for _, id := range ids {
				if _, ok := d.Data[id]; !ok {
					return fmt.Errorf("%s index key %q references word %d: %w", kind, key, id, ErrNotFound)
				}
			}
		}
	}
	return nil
}
