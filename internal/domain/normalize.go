package domain

import (
	"strings"
	"unicode"
)

// spaceToken replaces spaces inside English search keys.
const spaceToken = "%20"

// infinitivePrefix is stripped from verb glosses to derive a second key.
const infinitivePrefix = "to "

// PinyinSearchKeys derives the pinyin index keys for one entry:
// the diacritic form without whitespace, the digit form without whitespace,
// and the digit form without whitespace or digits. All keys are lower-cased.
// Empty keys are omitted.
func PinyinSearchKeys(marks, numbers string) []string {
	candidates := []string{
		strings.ToLower(removeRunes(marks, unicode.IsSpace)),
		strings.ToLower(removeRunes(numbers, unicode.IsSpace)),
		strings.ToLower(removeRunes(numbers, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsDigit(r)
		})),
	}

	keys := candidates[:0]
	for _, k := range candidates {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// EnglishSearchKeys derives the English index keys for every gloss, in gloss
// order. A gloss yields its primary key and, for glosses starting with
// "to ", a second key without that prefix.
func EnglishSearchKeys(glosses []string) []string {
	var keys []string
	for _, g := range glosses {
		keys = append(keys, englishGlossKeys(g)...)
	}
	return keys
}

func englishGlossKeys(gloss string) []string {
	formatted := stripEnglish(exciseParenthetical(gloss))
	if formatted == "" {
		return nil
	}

	keys := []string{encodeSpaces(formatted)}
	if rest, ok := strings.CutPrefix(formatted, infinitivePrefix); ok && rest != "" {
		keys = append(keys, encodeSpaces(rest))
	}
	return keys
}

// PinyinQueryKey normalizes free-form pinyin input the way index keys are
// normalized: lower-cased, whitespace removed.
func PinyinQueryKey(query string) string {
	return strings.ToLower(removeRunes(query, unicode.IsSpace))
}

// EnglishQueryKey normalizes free-form English input into a primary key.
func EnglishQueryKey(query string) string {
	return encodeSpaces(strings.TrimSpace(stripEnglish(exciseParenthetical(query))))
}

// exciseParenthetical removes the first "(...)" span together with one
// adjacent space: the space before "(" when text precedes the span,
// otherwise the space after ")". Text without a balanced span is returned
// unchanged.
func exciseParenthetical(s string) string {
	runes := []rune(s)
	open, closing := -1, -1
	for i, r := range runes {
		if r == '(' && open < 0 {
			open = i
		}
		if r == ')' && open >= 0 {
			closing = i
			break
		}
	}
	if open < 0 || closing < 0 {
		return s
	}

	prefix := runes[:open]
	suffix := runes[closing+1:]
	if len(prefix) > 0 {
		if prefix[len(prefix)-1] == ' ' {
			prefix = prefix[:len(prefix)-1]
		}
	} else if len(suffix) > 0 && suffix[0] == ' ' {
		suffix = suffix[1:]
	}

	return string(prefix) + string(suffix)
}

// stripEnglish drops digits and punctuation and lower-cases the rest.
func stripEnglish(s string) string {
	return strings.ToLower(removeRunes(s, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsPunct(r)
	}))
}

func encodeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", spaceToken)
}

func removeRunes(s string, drop func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if drop(r) {
			return -1
		}
		return r
	}, s)
}
