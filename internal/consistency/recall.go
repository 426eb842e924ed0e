package consistency

import (
	"regexp"
	"strings"
	"time"

	"github.com/kagami-ai/kagami/internal/model"
)

// recallDisclaimer replaces a recall-claim sentence with no supporting
// evidence.
const recallDisclaimer = "我不确定我们之前聊过这个细节，我没有可核对的记忆依据。"

// immediateWindow is how far back "just now" language may legitimately
// reach.
const immediateWindow = 90 * time.Minute

// lifeEventWindow is how many recent user/assistant texts join the
// grounding corpus.
const lifeEventWindow = 8

var recallClaimRe = regexp.MustCompile(
	`你(?:之前|以前|上次|那时)(?:提到|说)过?|我们(?:之前|上次)(?:聊|说|讨论)过?|` +
		`你(?:跟|和)我(?:说|讲)过|记得你(?:说|提)过|` +
		`(?i)you (?:mentioned|said|told me)(?: before| earlier| last time)?|` +
		`(?i)last time we (?:talked|spoke|chatted)|(?i)as you said before`)

var immediateTimeRe = regexp.MustCompile(`刚刚|刚才|方才|(?i)just now|(?i)a moment ago`)

var quotedTextRe = regexp.MustCompile(`[「“"']([^「」“”"']{2,})[」”"']`)

// immediateReplacements soften "just now" words to "earlier" phrasing.
var immediateReplacements = [][2]string{
	{"刚刚", "之前"},
	{"刚才", "之前"},
	{"方才", "之前"},
	{"just now", "earlier"},
	{"Just now", "Earlier"},
	{"a moment ago", "earlier"},
	{"A moment ago", "Earlier"},
}

// recallContext carries the evidence corpus for grounding checks.
type recallContext struct {
	Memories   []string
	Blocks     []model.MemoryBlock
	LifeEvents []model.LifeEvent
	Strict     bool
	Now        time.Time
}

// recallGround checks every explicit recall-claim sentence against the
// memory evidence corpus and softens stale immediate-time language.
// No-op unless strict memory grounding is enabled.
func recallGround(text string, rc recallContext) correction {
	if !rc.Strict {
		return unchanged(text)
	}

	corpus := buildCorpus(rc)
	sentences := splitSentences(text)
	var flags []string
	rewritten := false

	for i, sentence := range sentences {
		cur := sentence
		if recallClaimRe.MatchString(cur) && !groundedInCorpus(cur, corpus) {
			cur = recallDisclaimer
			flags = appendFlag(flags, model.RuleUngroundedRecall)
		}
		// Temporal softening can co-occur with or substitute for the
		// ungrounded rewrite; it never discards the sentence.
		if immediateTimeRe.MatchString(cur) && staleImmediateReference(cur, rc) {
			for _, rep := range immediateReplacements {
				cur = strings.ReplaceAll(cur, rep[0], rep[1])
			}
			flags = appendFlag(flags, model.RuleTemporalDeicticMismatch)
		}
		if cur != sentence {
			sentences[i] = cur
			rewritten = true
		}
	}

	if !rewritten {
		return unchanged(text)
	}
	return correction{
		Text:      joinSentences(sentences),
		Corrected: true,
		Flags:     flags,
		Reason:    strings.Join(flags, ","),
	}
}

// buildCorpus collects evidence block contents, prefix-stripped selected
// memories, and the last few user/assistant life-event texts.
func buildCorpus(rc recallContext) []string {
	var corpus []string
	for _, b := range rc.Blocks {
		if b.Content != "" {
			corpus = append(corpus, b.Content)
		}
	}
	for _, m := range rc.Memories {
		for _, prefix := range []string{"life=", "memory=", "pinned="} {
			m = strings.TrimPrefix(m, prefix)
		}
		if m != "" {
			corpus = append(corpus, m)
		}
	}
	for _, e := range recentDialogueEvents(rc.LifeEvents, lifeEventWindow) {
		corpus = append(corpus, e.Payload)
	}
	return corpus
}

// groundedInCorpus: exactly one meaningful token must appear somewhere;
// two or more tokens need at least two present, possibly across
// different corpus entries.
func groundedInCorpus(sentence string, corpus []string) bool {
	tokens := meaningfulTokens(sentence)
	if len(tokens) == 0 {
		return true
	}
	found := 0
	for _, t := range tokens {
		for _, entry := range corpus {
			if tokenInText(t, entry) {
				found++
				break
			}
		}
	}
	if len(tokens) == 1 {
		return found == 1
	}
	return found >= 2
}

// staleImmediateReference finds the prior user utterance the sentence
// most plausibly refers to and reports whether it is older than the
// immediate window. Quoted-text match wins; otherwise token overlap,
// preferring the most recent.
func staleImmediateReference(sentence string, rc recallContext) bool {
	userEvents := userDialogueEvents(rc.LifeEvents)
	if len(userEvents) == 0 {
		return false
	}

	var best *model.LifeEvent
	if m := quotedTextRe.FindStringSubmatch(sentence); m != nil {
		for i := len(userEvents) - 1; i >= 0; i-- {
			if strings.Contains(userEvents[i].Payload, m[1]) {
				best = &userEvents[i]
				break
			}
		}
	}
	if best == nil {
		tokens := meaningfulTokens(sentence)
		bestScore := 0
		for i := len(userEvents) - 1; i >= 0; i-- {
			score := overlapCount(tokens, userEvents[i].Payload)
			if score > bestScore {
				bestScore = score
				best = &userEvents[i]
			}
		}
	}
	if best == nil {
		return false
	}

	ts := time.UnixMilli(best.TS)
	return rc.Now.Sub(ts) > immediateWindow
}

func recentDialogueEvents(events []model.LifeEvent, n int) []model.LifeEvent {
	var out []model.LifeEvent
	for _, e := range events {
		if isUserEvent(e) || isAssistantEvent(e) {
			out = append(out, e)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func userDialogueEvents(events []model.LifeEvent) []model.LifeEvent {
	var out []model.LifeEvent
	for _, e := range events {
		if isUserEvent(e) {
			out = append(out, e)
		}
	}
	return out
}

func isUserEvent(e model.LifeEvent) bool {
	return strings.HasPrefix(e.Type, "user")
}

func isAssistantEvent(e model.LifeEvent) bool {
	return strings.HasPrefix(e.Type, "assistant")
}

func appendFlag(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}
