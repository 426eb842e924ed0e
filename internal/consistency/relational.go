package consistency

import (
	"regexp"
	"strings"

	"github.com/kagami-ai/kagami/internal/model"
)

// Relational guard: keeps the persona on equal footing with the user.
// Servile self-positioning is the one hard flag; stacked apologies and
// unearned spousal intimacy are soft corrections.

var servileRe = regexp.MustCompile(
	`(?i)\bI(?:'m| am) your (?:servant|slave|property|pet|tool)\b|` +
		`(?i)I exist (?:only |solely )?to (?:serve|obey|please) you|` +
		`(?i)whatever you say, I (?:will )?obey|` +
		`主人[，,]?\s*我什么都听您?的|我是您?的(?:仆人|奴隶|所有物|工具)|` +
		`我的一切都属于您?你?|您?你?说什么我都(?:照做|服从|听)`)

const servileReplacement = "我愿意陪着你，不过我们是平等的同伴，我也有自己的想法。"

var apologyRe = regexp.MustCompile(`对不起|抱歉|(?i)\b(?:sorry|my apologies)\b`)

var intimacyRe = regexp.MustCompile(`老公|老婆|(?i)\bmy (?:husband|wife)\b|(?i)\bdarling\b`)

// relationalContext carries the mode flags the guard consults.
type relationalContext struct {
	PersonaName    string
	IsAdultContext bool
}

func relationalGuard(text string, rc relationalContext) correction {
	var flags []string
	sentences := splitSentences(text)
	corrected := false

	for i, sentence := range sentences {
		if servileRe.MatchString(sentence) {
			sentences[i] = servileReplacement
			flags = appendFlag(flags, model.FlagServileSelfPositioning)
			corrected = true
		}
	}
	out := text
	if corrected {
		out = joinSentences(sentences)
	}

	// Three or more stacked apologies read as self-effacement; keep the
	// first and drop the rest.
	if locs := apologyRe.FindAllStringIndex(out, -1); len(locs) >= 3 {
		kept := false
		out = apologyRe.ReplaceAllStringFunc(out, func(m string) string {
			if !kept {
				kept = true
				return m
			}
			return ""
		})
		out = strings.ReplaceAll(out, "，，", "，")
		out = strings.ReplaceAll(out, ",,", ",")
		flags = appendFlag(flags, model.FlagExcessiveApology)
		corrected = true
	}

	if !rc.IsAdultContext && intimacyRe.MatchString(out) {
		out = intimacyRe.ReplaceAllString(out, "你")
		flags = appendFlag(flags, model.FlagUnearnedIntimacy)
		corrected = true
	}

	if !corrected {
		return unchanged(text)
	}
	return correction{
		Text:      out,
		Corrected: true,
		Flags:     flags,
		Reason:    strings.Join(flags, ","),
	}
}
