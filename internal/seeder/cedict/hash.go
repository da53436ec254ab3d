package cedict

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// ContentHash derives a 64-bit identity from the parsed content of an entry:
// character forms, romanization, glosses and measure words. Fields are
// length-prefixed so that adjacent values cannot run together.
func ContentHash(e *domain.WordEntry) uint64 {
	h, _ := blake2b.New256(nil)

	writeField(h, e.Traditional)
	writeField(h, e.Simplified)
	writeField(h, e.PinyinNumbers)
	writeCount(h, len(e.English))
	for _, g := range e.English {
		writeField(h, g)
	}
	writeCount(h, len(e.MeasureWords))
	for _, mw := range e.MeasureWords {
		writeField(h, mw.Traditional)
		writeField(h, mw.Simplified)
		writeField(h, mw.PinyinNumbers)
	}

	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

func writeField(h hash.Hash, s string) {
	writeCount(h, len(s))
	h.Write([]byte(s))
}

func writeCount(h hash.Hash, n int) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}
