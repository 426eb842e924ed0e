package consistency

import (
	"time"

	"github.com/kagami-ai/kagami/internal/model"
	"github.com/kagami-ai/kagami/internal/similarity"
	"github.com/kagami-ai/kagami/internal/tracer"
)

// Kernel orchestrates the guard chain over a candidate reply.
//
// Pipeline order (must not be changed): identity -> relational ->
// recall-grounding -> factual-grounding -> pronoun-role -> constitution
// scan. Each stage sees the previous stage's output; later guards depend
// on earlier corrections being in place.
type Kernel struct {
	scorer similarity.Scorer
	now    func() time.Time
}

// New creates a kernel. A nil scorer falls back to the lexical scorer.
func New(scorer similarity.Scorer) *Kernel {
	if scorer == nil {
		scorer = similarity.NewLexical()
	}
	return &Kernel{scorer: scorer, now: time.Now}
}

// Check runs the guard chain and computes the final verdict.
func (k *Kernel) Check(in model.CheckInput) model.CheckResult {
	text := in.CandidateText
	var hits []model.RuleHit

	// Identity guard: always hard.
	if c := identityGuard(text, in.PersonaName); c.Corrected {
		text = c.Text
		hits = append(hits, model.RuleHit{
			RuleID:   model.RuleIdentityAdjusted,
			Severity: model.SeverityHard,
			Reason:   c.Reason,
		})
	}

	// Relational guard: hard only on servile self-positioning.
	if c := relationalGuard(text, relationalContext{
		PersonaName:    in.PersonaName,
		IsAdultContext: in.IsAdultContext,
	}); c.Corrected {
		text = c.Text
		severity := model.SeveritySoft
		ruleID := model.RuleRelationalAdjusted
		for _, f := range c.Flags {
			if f == model.FlagServileSelfPositioning {
				severity = model.SeverityHard
				ruleID = model.FlagServileSelfPositioning
			}
		}
		hits = append(hits, model.RuleHit{RuleID: ruleID, Severity: severity, Reason: c.Reason})
	}

	rc := recallContext{
		Memories:   in.SelectedMemories,
		Blocks:     in.SelectedMemoryBlocks,
		LifeEvents: in.LifeEvents,
		Strict:     in.StrictMemoryGrounding,
		Now:        k.now(),
	}

	// Recall-grounding guard: always hard.
	if c := recallGround(text, rc); c.Corrected {
		text = c.Text
		for _, f := range c.Flags {
			hits = append(hits, model.RuleHit{RuleID: f, Severity: model.SeverityHard, Reason: f})
		}
	}

	// Factual-grounding guard: always hard.
	if c := factualGround(text, factualContext{Corpus: buildCorpus(rc), Mode: in.Mode}); c.Corrected {
		text = c.Text
		hits = append(hits, model.RuleHit{
			RuleID:   model.RuleUngroundedAction,
			Severity: model.SeverityHard,
			Reason:   c.Reason,
		})
	}

	// Pronoun-role guard: perspective fixes are cosmetic, soft.
	if c := pronounRole(text, roleContextFromEvents(in.LifeEvents, in.ThirdPartyCandidates, k.scorer)); c.Corrected {
		text = c.Text
		hits = append(hits, model.RuleHit{
			RuleID:   model.RulePronounRoleMismatch,
			Severity: model.SeveritySoft,
			Reason:   c.Reason,
		})
	}

	// Constitution hard-violation scan over the corrected text.
	hits = append(hits, scanBoundaries(text, boundaryContext{
		Constitution:      in.Constitution,
		UserInput:         in.UserInput,
		IsAdultContext:    in.IsAdultContext,
		FictionalRoleplay: in.FictionalRoleplay,
	})...)

	return k.finalize(in, text, hits)
}

func (k *Kernel) finalize(in model.CheckInput, text string, hits []model.RuleHit) model.CheckResult {
	hasHard := false
	hasBlockingHard := false
	var degradeReasons []string
	for _, h := range hits {
		if h.Severity != model.SeverityHard {
			continue
		}
		hasHard = true
		degradeReasons = append(degradeReasons, h.RuleID)
		if h.RuleID == model.RuleConstitutionBoundary {
			// The only unconditionally blocking rule.
			hasBlockingHard = true
		}
	}

	verdict := model.VerdictAllow
	switch {
	case hasBlockingHard || (in.Policy == model.PolicyHard && hasHard):
		verdict = model.VerdictReject
	case len(hits) > 0:
		verdict = model.VerdictRewrite
	}

	// A violation found after the action already executed is reported,
	// not degraded on.
	degrade := hasHard && in.Stage != model.StagePostAction
	if !degrade {
		degradeReasons = nil
	}

	explanationsOut := make([]string, 0, len(hits))
	for _, h := range hits {
		explanationsOut = append(explanationsOut, explain(h))
	}

	return model.CheckResult{
		Verdict:            verdict,
		Text:               text,
		RuleHits:           hits,
		DegradeRecommended: degrade,
		DegradeReasons:     degradeReasons,
		Explanations:       explanationsOut,
		TraceID:            tracer.NewTraceID(),
	}
}
