package cedict

import (
	"errors"
	"strings"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/pinyin"
)

// measureWordPrefix marks a gloss that lists classifiers, e.g.
// "CL:個|个[ge4],位[wei4]".
const measureWordPrefix = "CL:"

// Fields holds the raw parts of one dictionary line.
type Fields struct {
	Traditional  string
	Simplified   string
	Romanization string // digit-marked, e.g. "ni3 hao3"
	Glosses      []string
}

// ParseLine splits a line of the form
//
//	傳統 传统 [chuan2 tong3] /tradition/traditional/
//
// into its character forms, romanization and glosses. The character forms
// must not contain spaces and at least one gloss must be non-empty. Failures
// are *domain.LineError.
func ParseLine(line string) (Fields, error) {
	open := strings.IndexByte(line, '[')
	if open < 0 {
		return Fields{}, domain.NewLineError(line, "missing romanization bracket")
	}
	closeOff := strings.IndexByte(line[open:], ']')
	if closeOff < 0 {
		return Fields{}, domain.NewLineError(line, "unterminated romanization bracket")
	}

	tokens := strings.Split(line, " ")
	if len(tokens) < 2 {
		return Fields{}, domain.NewLineError(line, "missing simplified form")
	}
	trad, simp := tokens[0], tokens[1]
	if trad == "" || simp == "" || strings.ContainsRune(trad, '[') || strings.ContainsRune(simp, '[') {
		return Fields{}, domain.NewLineError(line, "empty character form")
	}

	roman := strings.TrimSpace(strings.ReplaceAll(line[open+1:open+closeOff], "[", ""))
	if roman == "" {
		return Fields{}, domain.NewLineError(line, "empty romanization")
	}

	slash := strings.IndexByte(line, '/')
	if slash < 0 {
		return Fields{}, domain.NewLineError(line, "missing gloss list")
	}

	var glosses []string
	for _, g := range strings.Split(line[slash:], "/") {
		if g != "" {
			glosses = append(glosses, g)
		}
	}

	if len(glosses) == 0 {
		return Fields{}, domain.NewLineError(line, "empty gloss list")
	}

	return Fields{
		Traditional:  trad,
		Simplified:   simp,
		Romanization: roman,
		Glosses:      glosses,
	}, nil
}

// ParseMeasureWords extracts classifiers from every "CL:" gloss and returns
// them together with the remaining glosses in their original order.
func ParseMeasureWords(glosses []string) ([]domain.MeasureWord, []string, error) {
	var (
		words  []domain.MeasureWord
		pruned = make([]string, 0, len(glosses))
	)
	for _, g := range glosses {
		body, ok := strings.CutPrefix(g, measureWordPrefix)
		if !ok {
			pruned = append(pruned, g)
			continue
		}
		for _, seg := range strings.Split(body, ",") {
			mw, err := parseMeasureWord(strings.TrimSpace(seg))
			if err != nil {
				return nil, nil, err
			}
			words = append(words, mw)
		}
	}
	return words, pruned, nil
}

// parseMeasureWord parses "個|个[ge4]" or "本[ben3]".
func parseMeasureWord(seg string) (domain.MeasureWord, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return domain.MeasureWord{}, domain.NewLineError(seg, "measure word without romanization")
	}
	closeOff := strings.IndexByte(seg[open:], ']')
	if closeOff < 0 {
		return domain.MeasureWord{}, domain.NewLineError(seg, "measure word with unterminated bracket")
	}

	numbers := strings.TrimSpace(seg[open+1 : open+closeOff])
	forms := seg[:open]

	trad, simp := forms, forms
	if bar := strings.IndexByte(forms, '|'); bar >= 0 {
		trad, simp = forms[:bar], forms[bar+1:]
	}
	if trad == "" || simp == "" || numbers == "" {
		return domain.MeasureWord{}, domain.NewLineError(seg, "incomplete measure word")
	}

	return domain.MeasureWord{
		Traditional:   trad,
		Simplified:    simp,
		PinyinNumbers: numbers,
		PinyinMarks:   pinyin.Prettify(numbers),
	}, nil
}

// ToneMarks returns the tone digits 1-5 of a digit-marked romanization in
// order. Other digits are ignored.
func ToneMarks(numbers string) []uint8 {
	var tones []uint8
	for _, r := range numbers {
		if r >= '1' && r <= '5' {
			tones = append(tones, uint8(r-'0'))
		}
	}
	return tones
}

// LevelClassifier reports the proficiency level of a simplified word.
type LevelClassifier interface {
	Level(simplified string) (uint8, bool)
}

// BuildEntry parses a line into a complete entry: measure words split out,
// tones extracted, diacritic pinyin derived, level and content hash set.
// levels may be nil. WordID is left unset.
func BuildEntry(line string, levels LevelClassifier) (domain.WordEntry, error) {
	f, err := ParseLine(line)
	if err != nil {
		return domain.WordEntry{}, err
	}

	mws, english, err := ParseMeasureWords(f.Glosses)
	if err != nil {
		var le *domain.LineError
		if errors.As(err, &le) {
			le.Text = line
		}
		return domain.WordEntry{}, err
	}

	e := domain.WordEntry{
		Traditional:   f.Traditional,
		Simplified:    f.Simplified,
		PinyinNumbers: f.Romanization,
		PinyinMarks:   pinyin.Prettify(f.Romanization),
		English:       english,
		ToneMarks:     ToneMarks(f.Romanization),
		MeasureWords:  mws,
	}
	if levels != nil {
		if lvl, ok := levels.Level(e.Simplified); ok {
			e.HSK = lvl
		}
	}
	e.Hash = ContentHash(&e)
	return e, nil
}
