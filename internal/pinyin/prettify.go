// Package pinyin converts digit-marked pinyin into its diacritic form.
package pinyin

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/unicode/norm"
)

var syllableLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Syllable", Pattern: `(?:[uU]:|[A-Za-zÜüÊê])+[0-9]?`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

var syllableType = syllableLexer.Symbols()["Syllable"]

// toneMarks holds the combining mark for tones 1 to 4.
var toneMarks = [...]rune{
	1: '\u0304', // macron
	2: '\u0301', // acute
	3: '\u030C', // caron
	4: '\u0300', // grave
}

// Prettify rewrites numbered pinyin such as "ni3 hao3" as "nǐ hǎo".
// Neutral-tone digits are dropped; tokens that are not syllables pass
// through unchanged. Input the lexer cannot tokenize is returned as is.
func Prettify(numbered string) string {
	lex, err := syllableLexer.LexString("", numbered)
	if err != nil {
		return numbered
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return numbered
	}

	var b strings.Builder
	b.Grow(len(numbered) + 8)
	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		if tok.Type == syllableType {
			b.WriteString(markSyllable(tok.Value))
			continue
		}
		b.WriteString(tok.Value)
	}
	return norm.NFC.String(b.String())
}

func markSyllable(syl string) string {
	syl = strings.NewReplacer("u:", "ü", "U:", "Ü").Replace(syl)

	letters := []rune(syl)
	last := letters[len(letters)-1]
	if last < '0' || last > '9' {
		return syl
	}
	tone := int(last - '0')
	letters = letters[:len(letters)-1]

	switch {
	case tone == 5:
		return string(letters)
	case tone < 1 || tone > 4 || len(letters) == 0:
		return syl
	}

	pos := markPosition(letters)
	out := make([]rune, 0, len(letters)+1)
	out = append(out, letters[:pos+1]...)
	out = append(out, toneMarks[tone])
	out = append(out, letters[pos+1:]...)
	return string(out)
}

// markPosition picks the letter that carries the tone mark: a or e first,
// then the o of "ou", then the last vowel, then the first letter for
// syllabic consonants such as "m2" or "ng4".
func markPosition(letters []rune) int {
	lower := []rune(strings.ToLower(string(letters)))

	for i, r := range lower {
		if r == 'a' || r == 'e' || r == 'ê' {
			return i
		}
	}
	for i := 0; i+1 < len(lower); i++ {
		if lower[i] == 'o' && lower[i+1] == 'u' {
			return i
		}
	}
	for i := len(lower) - 1; i >= 0; i-- {
		if strings.ContainsRune("aeiouü", lower[i]) {
			return i
		}
	}
	return 0
}
