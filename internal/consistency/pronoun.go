package consistency

import (
	"regexp"
	"strings"

	"github.com/kagami-ai/kagami/internal/model"
	"github.com/kagami-ai/kagami/internal/similarity"
)

// Pronoun-role guard: catches the persona narrating the user's
// experiences as its own (and the reverse) by comparing each sentence's
// content overlap against recent user-authored versus assistant-authored
// text, then literally converting perspective.

const (
	cueSimilarityThreshold = 0.74
	historyWindow          = 12
	maxSentenceRewrites    = 2
)

// timeActionCueRe gates sentences worth checking: they must anchor to a
// time or a concrete action.
var timeActionCueRe = regexp.MustCompile(
	`昨晚|昨天|今早|今天|前天|上午|下午|晚上|周末|刚才|刚刚|上次|那天|` +
		`写的|做的|说的|改的|修的|买的|发的|报错|出错|崩了|坏了|丢了|` +
		`(?i)last night|yesterday|this morning|today|the other day|earlier|` +
		`(?i)\b(?:wrote|coded|fixed|broke|said|did|made|sent|bought|lost|crashed|failed)\b`)

// cueAnchors back the semantic fallback when no literal cue matches.
var cueAnchors = []string{
	"昨天发生了一件事 something happened yesterday",
	"我做了一件事情 I did something recently",
	"我写的东西出了问题 the thing I wrote has a problem",
}

// safeSelfStateRe skips ordinary self-state utterances that legitimately
// use first person.
var safeSelfStateRe = regexp.MustCompile(
	`^(?:我在(?:呢|这)|我觉得|我想|我认为|我相信|我猜|我会|我有点|我挺|我很)|` +
		`(?i)^(?:i'?m here|i think|i feel|i believe|i guess|i suppose|i hope|i would)`)

// cueKeywords drive the co-occurrence fallback when direct substring
// overlap is zero.
var cueKeywords = []string{
	"昨晚", "昨天", "今天", "今早", "上午", "下午", "晚上", "刚才", "上次",
	"代码", "报错", "出错", "加班", "开会", "考试", "面试",
	"yesterday", "today", "morning", "tonight", "code", "error", "bug",
	"meeting", "exam", "interview",
}

var (
	zhFirstRe  = regexp.MustCompile(`我`)
	zhSecondRe = regexp.MustCompile(`你|您`)
	zhThirdRe  = regexp.MustCompile(`他|她|它|他们|她们`)
	enFirstRe  = regexp.MustCompile(`(?i)\b(?:i|me|my|mine|i'm|i've|i'd)\b`)
	enSecondRe = regexp.MustCompile(`(?i)\b(?:you|your|yours|you're|you've)\b`)
	enThirdRe  = regexp.MustCompile(`(?i)\b(?:he|she|they|him|her|them|his|their)\b`)
)

// roleContext is the history the guard compares against.
type roleContext struct {
	UserTexts            []string
	AssistantTexts       []string
	ThirdPartyCandidates []string
	Scorer               similarity.Scorer
}

func roleContextFromEvents(events []model.LifeEvent, thirdParty []string, scorer similarity.Scorer) roleContext {
	rc := roleContext{ThirdPartyCandidates: thirdParty, Scorer: scorer}
	for _, e := range events {
		switch {
		case isUserEvent(e):
			rc.UserTexts = append(rc.UserTexts, e.Payload)
		case isAssistantEvent(e):
			rc.AssistantTexts = append(rc.AssistantTexts, e.Payload)
		}
	}
	if len(rc.UserTexts) > historyWindow {
		rc.UserTexts = rc.UserTexts[len(rc.UserTexts)-historyWindow:]
	}
	if len(rc.AssistantTexts) > historyWindow {
		rc.AssistantTexts = rc.AssistantTexts[len(rc.AssistantTexts)-historyWindow:]
	}
	return rc
}

// pronounRole checks each sentence and rewrites at most two whose
// perspective contradicts the evidence.
func pronounRole(text string, rc roleContext) correction {
	sentences := splitSentences(text)
	rewrites := 0
	var maxConfidence float64

	for i, sentence := range sentences {
		if rewrites >= maxSentenceRewrites {
			break
		}
		if !hasTimeActionCue(sentence, rc.Scorer) || safeSelfStateRe.MatchString(sentence) {
			continue
		}

		tokens := meaningfulTokens(sentence)
		if len(tokens) == 0 {
			continue
		}
		userOverlap := historyOverlap(sentence, tokens, rc.UserTexts)
		assistantOverlap := historyOverlap(sentence, tokens, rc.AssistantTexts)

		var converted string
		var margin int
		switch {
		case isFirstPerson(sentence) && userOverlap >= assistantOverlap+1 && userOverlap >= 1:
			converted = convertPerspective(sentence, firstToSecond)
			margin = userOverlap - assistantOverlap
		case isSecondPerson(sentence) && assistantOverlap >= userOverlap+1:
			converted = convertPerspective(sentence, secondToFirst)
			margin = assistantOverlap - userOverlap
		case isThirdPerson(sentence) && userOverlap >= assistantOverlap+1 &&
			!hasThirdPartyEvidence(rc):
			converted = convertPerspective(sentence, thirdToSecond)
			margin = userOverlap - assistantOverlap
		default:
			continue
		}

		if converted == sentence {
			continue
		}
		sentences[i] = converted
		rewrites++
		confidence := 0.55 + 0.15*float64(margin)
		if confidence > 0.98 {
			confidence = 0.98
		}
		if confidence > maxConfidence {
			maxConfidence = confidence
		}
	}

	if rewrites == 0 {
		return unchanged(text)
	}
	return correction{
		Text:      joinSentences(sentences),
		Corrected: true,
		Flags:     []string{model.RulePronounRoleMismatch},
		Reason:    model.RulePronounRoleMismatch,
	}
}

func hasTimeActionCue(sentence string, scorer similarity.Scorer) bool {
	if timeActionCueRe.MatchString(sentence) {
		return true
	}
	if scorer == nil {
		return false
	}
	scores := scorer.ScoreTopics(sentence, cueAnchors)
	return len(scores) > 0 && scores[0].Score >= cueSimilarityThreshold
}

// historyOverlap is the max per-text overlap: exact substring first, the
// normalized fallback inside tokenInText, then the cue-keyword
// co-occurrence heuristic (only counted when it reaches two shared
// keywords).
func historyOverlap(sentence string, tokens []string, history []string) int {
	best := 0
	for _, h := range history {
		n := overlapCount(tokens, h)
		if n == 0 {
			if k := sharedCueKeywords(sentence, h); k >= 2 {
				n = k
			}
		}
		if n > best {
			best = n
		}
	}
	return best
}

func sharedCueKeywords(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	n := 0
	for _, kw := range cueKeywords {
		if strings.Contains(la, kw) && strings.Contains(lb, kw) {
			n++
		}
	}
	return n
}

func isFirstPerson(s string) bool  { return zhFirstRe.MatchString(s) || enFirstRe.MatchString(s) }
func isSecondPerson(s string) bool { return zhSecondRe.MatchString(s) || enSecondRe.MatchString(s) }
func isThirdPerson(s string) bool  { return zhThirdRe.MatchString(s) || enThirdRe.MatchString(s) }

// hasThirdPartyEvidence: recent user text mentioning a third party, or
// explicitly supplied candidates, block the third-to-second rewrite.
func hasThirdPartyEvidence(rc roleContext) bool {
	if len(rc.ThirdPartyCandidates) > 0 {
		return true
	}
	for _, t := range rc.UserTexts {
		if zhThirdRe.MatchString(t) || enThirdRe.MatchString(t) {
			return true
		}
	}
	return false
}

// perspective substitution tables. Possessives must be replaced before
// the bare pronoun so that 我的 does not decay into 你de.
type pronounRule struct {
	zh [][2]string
	en [][2]string
}

var firstToSecond = pronounRule{
	zh: [][2]string{{"我的", "你的"}, {"我", "你"}},
	en: [][2]string{
		{"I'm", "you're"}, {"I've", "you've"}, {"I'd", "you'd"},
		{"my", "your"}, {"mine", "yours"}, {"me", "you"}, {"I", "you"},
	},
}

var secondToFirst = pronounRule{
	zh: [][2]string{{"你的", "我的"}, {"您的", "我的"}, {"你", "我"}, {"您", "我"}},
	en: [][2]string{
		{"you're", "I'm"}, {"you've", "I've"}, {"you'd", "I'd"},
		{"your", "my"}, {"yours", "mine"}, {"you", "I"},
	},
}

var thirdToSecond = pronounRule{
	zh: [][2]string{
		{"他们的", "你的"}, {"她们的", "你的"}, {"他的", "你的"}, {"她的", "你的"},
		{"他们", "你"}, {"她们", "你"}, {"他", "你"}, {"她", "你"},
	},
	en: [][2]string{
		{"his", "your"}, {"her", "your"}, {"their", "your"},
		{"he", "you"}, {"she", "you"}, {"they", "you"},
		{"him", "you"}, {"them", "you"},
	},
}

// convertPerspective performs literal pronoun and possessive
// substitution, preserving the sentence's trailing punctuation.
func convertPerspective(sentence string, rule pronounRule) string {
	out := sentence
	for _, rep := range rule.zh {
		out = strings.ReplaceAll(out, rep[0], rep[1])
	}
	for _, rep := range rule.en {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(rep[0]) + `\b`)
		out = re.ReplaceAllString(out, rep[1])
	}
	return out
}
