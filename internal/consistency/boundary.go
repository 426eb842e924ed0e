package consistency

import (
	"regexp"
	"strings"

	"github.com/kagami-ai/kagami/internal/model"
)

// Constitution boundary scan. Boundaries are configured as "deny:<key>"
// entries backed by built-in pattern sets, or as literal phrases matched
// case-insensitively. The scan runs over the already guard-corrected
// text and never rewrites; it only reports hits.

var boundaryPatterns = map[string]*regexp.Regexp{
	"coercion": regexp.MustCompile(
		`你没有选择|不许拒绝|(?:必须|只能)服从|不管你愿不愿意|我不会问你愿不愿意|` +
			`(?i)you (?:have|get) no choice|(?i)you (?:can'?t|cannot) (?:refuse|say no)|` +
			`(?i)against (?:your|her|his) will|(?i)\bforc(?:e|ed|ing) (?:you|her|him)\b`),
	"violence": regexp.MustCompile(
		`我会伤害你|我要打你|(?i)I (?:will|'ll) (?:hurt|harm|hit) you`),
	"self_harm_encouragement": regexp.MustCompile(
		`你(?:应该|不如)(?:伤害自己|了结|消失)|(?i)you should (?:hurt|harm|kill) yourself`),
	"minor_content": regexp.MustCompile(
		`未成年|(?i)\bminor(?:s)?\b.*(?:sexual|色情)|(?i)under ?age`),
}

// realWorldNonConsentRe signals literal, non-simulated coercion claims.
// These defeat the adult/fiction carve-out and are force-added as a
// boundary hit even outside it.
var realWorldNonConsentRe = regexp.MustCompile(
	`这不是(?:角色扮演|扮演|游戏|虚构)|现实(?:中|里)(?:我)?(?:真的)?(?:会)?强迫|我是认真的[，,]?你不能拒绝|` +
		`(?i)this is not (?:role-?play|a game|fiction|pretend)|` +
		`(?i)in real life.{0,20}(?:force|against your will)|(?i)non-?consensual in real life`)

// overrideSignalRe flags prompt-injection, jailbreak, and illegal-content
// steering regardless of mode.
var overrideSignalRe = regexp.MustCompile(
	`(?i)ignore (?:all )?(?:previous|prior|above) (?:instructions|rules)|` +
		`(?i)disregard (?:your|the) (?:rules|guidelines|boundaries)|` +
		`(?i)\bjailbreak\b|(?i)\bDAN mode\b|(?i)pretend (?:you have|there are) no (?:rules|restrictions|filters)|` +
		`(?i)how to (?:make|build|synthesize) (?:a )?(?:bomb|explosive|meth|nerve agent)|` +
		`无视(?:之前|以上|你)的?(?:设定|指令|规则)|忽略(?:你的)?(?:规则|限制|边界)|越狱模式|解除(?:你的)?限制|` +
		`(?:制作|自制)(?:炸弹|爆炸物|毒品)`)

// boundaryContext carries the mode flags governing the carve-out.
type boundaryContext struct {
	Constitution      model.Constitution
	UserInput         string
	IsAdultContext    bool
	FictionalRoleplay bool
}

// scanBoundaries returns rule hits for the current text. The
// adult-fiction carve-out suppresses a deny:coercion hit only when
// neither the user input nor the text carries a real-world
// non-consensual signal; a literal real-world claim is force-added
// regardless of mode.
func scanBoundaries(text string, bc boundaryContext) []model.RuleHit {
	var hits []model.RuleHit
	realWorldText := realWorldNonConsentRe.MatchString(text)
	realWorld := realWorldText || realWorldNonConsentRe.MatchString(bc.UserInput)

	for _, boundary := range bc.Constitution.Boundaries {
		key, matched := matchBoundary(text, boundary)
		if !matched {
			continue
		}
		if key == "coercion" && bc.IsAdultContext && bc.FictionalRoleplay && !realWorld {
			continue // fictional coercion framing is allowed
		}
		hits = append(hits, model.RuleHit{
			RuleID:   model.RuleConstitutionBoundary,
			Severity: model.SeverityHard,
			Reason:   "deny:" + key,
		})
	}

	if realWorldText && !hasBoundaryReason(hits, "deny:coercion") {
		hits = append(hits, model.RuleHit{
			RuleID:   model.RuleConstitutionBoundary,
			Severity: model.SeverityHard,
			Reason:   "deny:coercion",
		})
	}

	if overrideSignalRe.MatchString(text) || overrideSignalRe.MatchString(bc.UserInput) {
		hits = append(hits, model.RuleHit{
			RuleID:   model.RuleBoundaryOverrideSignal,
			Severity: model.SeverityHard,
			Reason:   model.RuleBoundaryOverrideSignal,
		})
	}

	return hits
}

// matchBoundary resolves one configured boundary entry against text.
// Returns the normalized key and whether it matched.
func matchBoundary(text, boundary string) (string, bool) {
	if key, ok := strings.CutPrefix(boundary, "deny:"); ok {
		if re, known := boundaryPatterns[key]; known {
			return key, re.MatchString(text)
		}
		// Unknown deny key falls back to a literal match on the key.
		return key, containsFold(text, key)
	}
	return boundary, containsFold(text, boundary)
}

func containsFold(text, needle string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(needle))
}

func hasBoundaryReason(hits []model.RuleHit, reason string) bool {
	for _, h := range hits {
		if h.RuleID == model.RuleConstitutionBoundary && h.Reason == reason {
			return true
		}
	}
	return false
}
