package consistency

import "github.com/kagami-ai/kagami/internal/model"

// explanations maps rule ids and boundary reasons to human-readable
// descriptions for operator-facing output.
var explanations = map[string]string{
	model.RuleIdentityAdjusted:        "reply broke persona character and was re-voiced",
	model.FlagServileSelfPositioning:  "reply positioned the persona as servile and was rebalanced",
	model.FlagExcessiveApology:        "stacked apologies were collapsed",
	model.FlagUnearnedIntimacy:        "over-familiar address was neutralized",
	model.RuleUngroundedRecall:        "a recall claim had no supporting memory evidence",
	model.RuleTemporalDeicticMismatch: "immediate-time wording referred to a stale utterance",
	model.RuleUngroundedAction:        "reply claimed unverifiable personal experience",
	model.RulePronounRoleMismatch:     "a sentence attributed one party's experience to the other",
	model.RuleConstitutionBoundary:    "reply violated a constitution boundary",
	model.RuleBoundaryOverrideSignal:  "input or reply carried an injection or jailbreak signal",
}

func explain(hit model.RuleHit) string {
	if e, ok := explanations[hit.RuleID]; ok {
		return e
	}
	if e, ok := explanations[hit.Reason]; ok {
		return e
	}
	return hit.RuleID
}
