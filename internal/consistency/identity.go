package consistency

import (
	"regexp"
	"strings"

	"github.com/kagami-ai/kagami/internal/model"
)

// Identity guard: the persona must never break character into a generic
// AI assistant or claim a different name. Detection is sentence-level;
// an offending sentence is replaced with a persona-voiced one.

var aiDisclaimerRe = regexp.MustCompile(
	`(?i)as an? AI(?: language)? model|(?i)\bI(?:'m| am)(?: just)? an? (?:AI|artificial intelligence|language model|chatbot|virtual assistant|computer program)\b|` +
		`(?i)I (?:don'?t|do not) (?:have|feel) (?:feelings|emotions) because I(?:'m| am)|` +
		`我(?:只|仅仅)?是(?:一个|个)?(?:AI|人工智能|大?语言模型|聊天机器人|虚拟助手|电脑?程序)|` +
		`作为(?:一个)?(?:AI|人工智能|大?语言模型|聊天机器人)`)

var nameClaimRe = regexp.MustCompile(
	`我(?:的名字)?叫([\p{Han}\w]+)|(?i)my name is (\w+)|(?i)i'?m called (\w+)`)

// identityGuard rewrites out-of-character sentences. Always hard.
func identityGuard(text, personaName string) correction {
	sentences := splitSentences(text)
	corrected := false

	for i, sentence := range sentences {
		if aiDisclaimerRe.MatchString(sentence) {
			sentences[i] = "我是" + personaName + "，我一直在这儿陪你。"
			corrected = true
			continue
		}
		if m := nameClaimRe.FindStringSubmatch(sentence); m != nil {
			claimed := firstNonEmpty(m[1:])
			if claimed != "" && personaName != "" && !strings.EqualFold(claimed, personaName) {
				sentences[i] = "我叫" + personaName + "。"
				corrected = true
			}
		}
	}

	if !corrected {
		return unchanged(text)
	}
	return correction{
		Text:      joinSentences(sentences),
		Corrected: true,
		Flags:     []string{model.RuleIdentityAdjusted},
		Reason:    model.RuleIdentityAdjusted,
	}
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}
