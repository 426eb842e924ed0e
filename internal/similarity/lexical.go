package similarity

import (
	"sort"
	"strings"
	"unicode"
)

// Lexical is a deterministic token-overlap scorer. It computes a Dice
// coefficient over feature sets built from lowercased word tokens plus
// CJK character bigrams, which behaves acceptably for short anchor
// phrases in both English and Chinese.
type Lexical struct{}

// NewLexical returns the fallback scorer.
func NewLexical() *Lexical { return &Lexical{} }

// ScoreTopics implements Scorer.
func (l *Lexical) ScoreTopics(text string, anchors []string) []TopicScore {
	tf := features(text)
	out := make([]TopicScore, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, TopicScore{Topic: a, Score: dice(tf, features(a))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// features builds the feature set: word tokens for alphanumeric runs,
// character bigrams (and lone characters) for CJK runs.
func features(s string) map[string]bool {
	set := make(map[string]bool)
	var word []rune
	var cjk []rune

	flushWord := func() {
		if len(word) > 0 {
			set[strings.ToLower(string(word))] = true
			word = word[:0]
		}
	}
	flushCJK := func() {
		if len(cjk) == 1 {
			set[string(cjk)] = true
		}
		for i := 0; i+1 < len(cjk); i++ {
			set[string(cjk[i:i+2])] = true
		}
		cjk = cjk[:0]
	}

	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			cjk = append(cjk, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushCJK()
			word = append(word, r)
		default:
			flushWord()
			flushCJK()
		}
	}
	flushWord()
	flushCJK()
	return set
}

func dice(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for f := range a {
		if b[f] {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
