package consistency

import (
	"strings"
	"testing"
)

func TestSplitSentencesKeepsTerminators(t *testing.T) {
	got := splitSentences("你好。今天怎么样？Let's go!")
	want := []string{"你好。", "今天怎么样？", "Let's go!"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestJoinSentencesRestoresLatinSpacing(t *testing.T) {
	sentences := splitSentences("First thing. Second thing.")
	if got := joinSentences(sentences); got != "First thing. Second thing." {
		t.Errorf("latin sentences lost spacing: %q", got)
	}

	sentences = splitSentences("第一句。第二句。")
	if got := joinSentences(sentences); got != "第一句。第二句。" {
		t.Errorf("cjk sentences gained spacing: %q", got)
	}
}

func TestMeaningfulTokens(t *testing.T) {
	tokens := meaningfulTokens("我昨晚写的代码报错了")
	if len(tokens) == 0 {
		t.Fatal("expected han bigrams")
	}
	for _, want := range []string{"昨晚", "代码", "报错"} {
		found := false
		for _, tok := range tokens {
			if tok == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected bigram %q in %v", want, tokens)
		}
	}

	tokens = meaningfulTokens("the code crashed at night")
	for _, tok := range tokens {
		if tok == "the" || tok == "at" {
			t.Errorf("stopword %q leaked into tokens", tok)
		}
	}
}

func TestMeaningfulTokensCap(t *testing.T) {
	long := strings.Repeat("不同字符变化多端层出无穷尽也", 4)
	if got := meaningfulTokens(long); len(got) > maxMeaningfulTokens {
		t.Errorf("token count %d exceeds cap %d", len(got), maxMeaningfulTokens)
	}
}

func TestTokenInTextNormalized(t *testing.T) {
	if !tokenInText("rust", "I want to learn Rust!") {
		t.Error("case-insensitive match failed")
	}
	if tokenInText("爬山", "今天天气不错") {
		t.Error("false positive match")
	}
}
