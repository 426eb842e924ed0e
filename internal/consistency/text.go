// Package consistency implements the output kernel: an ordered chain of
// pure text guards over a candidate reply, severity arbitration, and the
// final allow/rewrite/reject verdict.
package consistency

import (
	"strings"
	"unicode"
)

// maxMeaningfulTokens caps the token set used for grounding checks.
const maxMeaningfulTokens = 12

var stopwords = map[string]bool{
	// English
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "to": true, "in": true,
	"on": true, "at": true, "and": true, "or": true, "that": true, "this": true,
	"it": true, "have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "not": true, "for": true, "with": true, "you": true, "your": true,
	"my": true, "me": true, "we": true, "they": true, "about": true, "just": true,
	// Chinese bigrams that carry no content
	"我们": true, "你们": true, "他们": true, "的话": true, "时候": true,
	"现在": true, "已经": true, "可以": true, "没有": true, "什么": true,
	"这个": true, "那个": true, "就是": true, "一下": true, "之前": true,
	"提到": true, "说过": true, "记得": true, "上次": true,
}

// meaningfulTokens extracts up to maxMeaningfulTokens content tokens:
// alphanumeric runs of length >= 2 lowercased, and character bigrams for
// Han runs. Stopwords are dropped.
func meaningfulTokens(s string) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(t string) {
		if len(tokens) >= maxMeaningfulTokens || stopwords[t] || seen[t] {
			return
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	var word []rune
	var han []rune
	flushWord := func() {
		if len(word) >= 2 {
			add(strings.ToLower(string(word)))
		}
		word = word[:0]
	}
	flushHan := func() {
		for i := 0; i+1 < len(han); i++ {
			add(string(han[i : i+2]))
		}
		han = han[:0]
	}

	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word = append(word, r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return tokens
}

// sentenceTerminators covers Latin and CJK sentence punctuation.
const sentenceTerminators = ".!?。！？；;\n"

// splitSentences splits text into sentences, keeping each terminator run
// attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	terminating := false
	for _, r := range text {
		isTerm := strings.ContainsRune(sentenceTerminators, r)
		if terminating && !isTerm {
			s := strings.TrimSpace(cur.String())
			if s != "" {
				out = append(out, s)
			}
			cur.Reset()
			terminating = false
		}
		cur.WriteRune(r)
		if isTerm {
			terminating = true
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// joinSentences reassembles split sentences, restoring the space that
// separates Latin sentences.
func joinSentences(sentences []string) string {
	var b strings.Builder
	for i, s := range sentences {
		if i > 0 && s != "" {
			prev := sentences[i-1]
			last, _ := lastRune(prev)
			first, _ := firstRune(s)
			if last < 128 && first < 128 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(s)
	}
	return b.String()
}

func lastRune(s string) (rune, bool) {
	var r rune
	ok := false
	for _, c := range s {
		r = c
		ok = true
	}
	return r, ok
}

func firstRune(s string) (rune, bool) {
	for _, c := range s {
		return c, true
	}
	return 0, false
}

// normalizeForMatch lowercases and strips punctuation/whitespace so that
// substring checks survive cosmetic differences.
func normalizeForMatch(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenInText reports whether a token occurs in the text, either exactly
// or after normalization.
func tokenInText(token, text string) bool {
	if strings.Contains(text, token) {
		return true
	}
	return strings.Contains(normalizeForMatch(text), normalizeForMatch(token))
}

// overlapCount counts how many tokens occur in the given text.
func overlapCount(tokens []string, text string) int {
	n := 0
	for _, t := range tokens {
		if tokenInText(t, text) {
			n++
		}
	}
	return n
}

// correction is the uniform guard result: possibly-rewritten text plus a
// corrected flag and machine-readable reasons.
type correction struct {
	Text      string
	Corrected bool
	Flags     []string
	Reason    string
}

func unchanged(text string) correction {
	return correction{Text: text}
}
