package pinyin

import "testing"

func TestPrettify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "two syllables", input: "ni3 hao3", want: "nǐ hǎo"},
		{name: "u colon", input: "lu:4", want: "lǜ"},
		{name: "u colon third tone", input: "nu:3", want: "nǚ"},
		{name: "neutral tone dropped", input: "r5", want: "r"},
		{name: "neutral particle", input: "ma5", want: "ma"},
		{name: "mark on a", input: "guan1", want: "guān"},
		{name: "mark on e", input: "lu:e4", want: "lüè"},
		{name: "mark on o of ou", input: "dou1", want: "dōu"},
		{name: "last vowel", input: "gui4", want: "guì"},
		{name: "last vowel iu", input: "xiu1", want: "xiū"},
		{name: "syllabic m", input: "m2", want: "ḿ"},
		{name: "capitalized", input: "Bei3 jing1", want: "Běi jīng"},
		{name: "punctuation passes through", input: "ni3 , hao3", want: "nǐ , hǎo"},
		{name: "no tone digit", input: "hao", want: "hao"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Prettify(tt.input); got != tt.want {
				t.Errorf("Prettify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMarkPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		letters string
		want    int
	}{
		{letters: "hao", want: 1},
		{letters: "mei", want: 1},
		{letters: "zhou", want: 2},
		{letters: "liu", want: 2},
		{letters: "ng", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.letters, func(t *testing.T) {
			t.Parallel()
			if got := markPosition([]rune(tt.letters)); got != tt.want {
				t.Errorf("markPosition(%q) = %d, want %d", tt.letters, got, tt.want)
			}
		})
	}
}
