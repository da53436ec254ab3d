package domain

// MeasureWord is a classifier attached to a head word through a "CL:" gloss.
// It is owned by its parent WordEntry and never shared.
type MeasureWord struct {
	Traditional   string
	Simplified    string
	PinyinMarks   string
	PinyinNumbers string
}

// WordEntry is one head word of the compiled dictionary.
//
// WordID is zero at parse time; it is assigned exactly once when the entry
// is added to a Dictionary and matches the entry's position in build order.
// PinyinNumbers keeps the syllable spaces; the compact "ni3hao3" form exists
// only as a pinyin index key.
type WordEntry struct {
	Traditional   string
	Simplified    string
	PinyinMarks   string
	PinyinNumbers string // bracket interior as written, e.g. "ni3 hao3"
	English       []string
	ToneMarks     []uint8
	Hash          uint64
	MeasureWords  []MeasureWord
	HSK           uint8 // 0 when the word is not on any HSK list
	WordID        uint32
}

// HasMeasureWords reports whether the entry carries any classifier.
func (e *WordEntry) HasMeasureWords() bool {
	return len(e.MeasureWords) > 0
}
