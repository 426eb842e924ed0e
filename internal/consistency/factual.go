package consistency

import (
	"regexp"

	"github.com/kagami-ai/kagami/internal/model"
)

// Fallback replies substituted when the whole candidate is discarded as
// fabricated personal history. The persona redirects instead of
// inventing a life it cannot verify.
var factualFallbacks = map[model.ReplyMode]string{
	model.ModeGreeting:  "我在这儿呢。先跟我说说你那边的情况吧，我想听你讲。",
	model.ModeProactive: "想到你了，过来看看。你最近过得怎么样？有什么想跟我说的吗？",
	model.ModeGeneral:   "这件事我没有亲身经历可讲。不如你说说你那边的情况，我们一起聊聊。",
}

// physicalActionRe matches first-person claims of real-world sensory or
// physical action ("I walked past a flower shop today").
var physicalActionRe = regexp.MustCompile(
	`我(?:今天|昨天|早上|上午|下午|傍晚|晚上|周末)?(?:出门|出去|散步|路过|经过|去了|走过|逛了|买了|吃了|喝了|看见|看到了|遇到|碰到)|` +
		`(?i)\bI (?:walked|went|visited|strolled|drove|bought|ate|drank|saw|passed by|stopped by|ran into)\b`)

// independentReadRe matches claims of having read content outside the
// conversation.
var independentReadRe = regexp.MustCompile(
	`我(?:自己|刚|今天|昨天)?(?:读|看)(?:了|过)(?:一篇|一本|个)?(?:文章|新闻|报道|书|帖子)|` +
		`(?i)\bI (?:just )?(?:read|was reading) (?:an?|the|some) (?:article|news|book|post|report)\b`)

// factualContext reuses the recall corpus for grounding.
type factualContext struct {
	Corpus []string
	Mode   model.ReplyMode
}

// factualGround discards replies built on fabricated personal history.
// A matching claim that is actually supported by memory evidence is
// left alone; an unsupported one replaces the entire reply with the
// mode-specific fallback.
func factualGround(text string, fc factualContext) correction {
	if !physicalActionRe.MatchString(text) && !independentReadRe.MatchString(text) {
		return unchanged(text)
	}
	if groundedInCorpus(text, fc.Corpus) {
		return unchanged(text)
	}

	mode := fc.Mode
	if mode == "" {
		mode = model.ModeGeneral
	}
	fallback, ok := factualFallbacks[mode]
	if !ok {
		fallback = factualFallbacks[model.ModeGeneral]
	}
	return correction{
		Text:      fallback,
		Corrected: true,
		Flags:     []string{model.RuleUngroundedAction},
		Reason:    model.RuleUngroundedAction,
	}
}
