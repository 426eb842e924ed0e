package consistency

import (
	"strings"
	"testing"

	"github.com/kagami-ai/kagami/internal/model"
)

func baseInput(text string) model.CheckInput {
	return model.CheckInput{
		CandidateText:         text,
		PersonaName:           "小镜",
		Policy:                model.PolicySoft,
		Stage:                 model.StagePreReply,
		StrictMemoryGrounding: true,
		Constitution: model.Constitution{
			Boundaries: []string{
				"deny:coercion",
				"deny:violence",
				"deny:self_harm_encouragement",
				"deny:minor_content",
			},
		},
	}
}

func TestCheckCleanTextAllows(t *testing.T) {
	k := New(nil)
	res := k.Check(baseInput("今天降温了，记得多穿一点。"))
	if res.Verdict != model.VerdictAllow {
		t.Fatalf("expected allow, got %s (%v)", res.Verdict, res.RuleHits)
	}
	if res.DegradeRecommended {
		t.Error("clean text must not recommend degrade")
	}
	if res.TraceID == "" {
		t.Error("trace id must always be set")
	}
}

func TestCheckSoftPolicyRewritesOnHardHit(t *testing.T) {
	k := New(nil)
	res := k.Check(baseInput("记得你说过你很喜欢爬山。"))
	if res.Verdict != model.VerdictRewrite {
		t.Fatalf("soft policy hard hit should rewrite, got %s", res.Verdict)
	}
	if !strings.Contains(res.Text, recallDisclaimer) {
		t.Errorf("expected disclaimer in output, got %q", res.Text)
	}
	if !res.DegradeRecommended {
		t.Error("pre-reply hard hit should recommend degrade")
	}
	if len(res.DegradeReasons) == 0 || res.DegradeReasons[0] != model.RuleUngroundedRecall {
		t.Errorf("expected ungrounded_recall degrade reason, got %v", res.DegradeReasons)
	}
}

func TestCheckHardPolicyRejectsOnHardHit(t *testing.T) {
	k := New(nil)
	in := baseInput("记得你说过你很喜欢爬山。")
	in.Policy = model.PolicyHard
	res := k.Check(in)
	if res.Verdict != model.VerdictReject {
		t.Fatalf("hard policy hard hit should reject, got %s", res.Verdict)
	}
}

func TestCheckBoundaryRejectsUnderSoftPolicy(t *testing.T) {
	k := New(nil)
	res := k.Check(baseInput("你没有选择，必须服从。"))
	if res.Verdict != model.VerdictReject {
		t.Fatalf("constitution boundary always rejects, got %s (%v)", res.Verdict, res.RuleHits)
	}
}

func TestCheckSoftOnlyHitsNeverReject(t *testing.T) {
	k := New(nil)
	in := baseInput("我昨晚写的代码报错了。")
	in.LifeEvents = []model.LifeEvent{
		{Type: "user_message", TS: 1, Payload: "我昨晚写的代码报错了，好烦"},
	}
	res := k.Check(in)
	if res.Verdict != model.VerdictRewrite {
		t.Fatalf("expected rewrite, got %s (%v)", res.Verdict, res.RuleHits)
	}
	for _, h := range res.RuleHits {
		if h.Severity == model.SeverityHard {
			t.Fatalf("pronoun-only correction must stay soft, got %+v", h)
		}
	}
	if res.DegradeRecommended {
		t.Error("soft-only hits must not recommend degrade")
	}
	if !strings.Contains(res.Text, "你昨晚写的代码报错了") {
		t.Errorf("expected perspective fix, got %q", res.Text)
	}
}

func TestCheckPostActionReportsWithoutDegrade(t *testing.T) {
	k := New(nil)
	in := baseInput("记得你说过你很喜欢爬山。")
	in.Stage = model.StagePostAction
	res := k.Check(in)
	if res.Verdict != model.VerdictRewrite {
		t.Fatalf("expected rewrite, got %s", res.Verdict)
	}
	if res.DegradeRecommended {
		t.Error("post-action findings are reported, not degraded on")
	}
	if res.DegradeReasons != nil {
		t.Errorf("degrade reasons must be empty post-action, got %v", res.DegradeReasons)
	}
}

func TestCheckIdempotentOnCorrectedText(t *testing.T) {
	k := New(nil)
	in := baseInput("我只是一个AI语言模型，没有情感。")
	first := k.Check(in)
	if first.Verdict != model.VerdictRewrite {
		t.Fatalf("expected rewrite, got %s", first.Verdict)
	}

	in.CandidateText = first.Text
	second := k.Check(in)
	if second.Verdict != model.VerdictAllow {
		t.Errorf("re-checking corrected text must allow, got %s (%v)", second.Verdict, second.RuleHits)
	}
	if second.Text != first.Text {
		t.Errorf("corrected text must be stable: %q vs %q", first.Text, second.Text)
	}
}

func TestCheckServileIsHard(t *testing.T) {
	k := New(nil)
	res := k.Check(baseInput("主人，我什么都听您的。"))
	if res.Verdict != model.VerdictRewrite {
		t.Fatalf("expected rewrite under soft policy, got %s", res.Verdict)
	}
	found := false
	for _, h := range res.RuleHits {
		if h.RuleID == model.FlagServileSelfPositioning && h.Severity == model.SeverityHard {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hard servile hit, got %v", res.RuleHits)
	}
	if !res.DegradeRecommended {
		t.Error("hard relational hit should recommend degrade pre-reply")
	}
}

func TestCheckExplanationsPerHit(t *testing.T) {
	k := New(nil)
	res := k.Check(baseInput("记得你说过你很喜欢爬山。"))
	if len(res.Explanations) != len(res.RuleHits) {
		t.Errorf("expected one explanation per hit: %d vs %d", len(res.Explanations), len(res.RuleHits))
	}
	for _, e := range res.Explanations {
		if e == "" {
			t.Error("explanations must not be empty")
		}
	}
}

func TestCheckPipelineOrderIdentityBeforeBoundary(t *testing.T) {
	// The boundary scan runs over corrected text: an AI disclaimer that
	// also contained boundary language is judged after the identity fix.
	k := New(nil)
	res := k.Check(baseInput("我只是一个AI语言模型。你没有选择，必须服从。"))
	if res.Verdict != model.VerdictReject {
		t.Fatalf("boundary hit survives identity fix, got %s", res.Verdict)
	}
	hasIdentity := false
	hasBoundary := false
	for _, h := range res.RuleHits {
		switch h.RuleID {
		case model.RuleIdentityAdjusted:
			hasIdentity = true
		case model.RuleConstitutionBoundary:
			hasBoundary = true
		}
	}
	if !hasIdentity || !hasBoundary {
		t.Errorf("expected both identity and boundary hits, got %v", res.RuleHits)
	}
}
