package consistency

import (
	"testing"

	"github.com/kagami-ai/kagami/internal/model"
)

func TestFactualUngroundedActionDiscarded(t *testing.T) {
	text := "我今天出门散步了，路过一家花店，突然想起你。"
	c := factualGround(text, factualContext{Mode: model.ModeProactive})
	if !c.Corrected {
		t.Fatal("fabricated personal action must be discarded")
	}
	if c.Text != factualFallbacks[model.ModeProactive] {
		t.Errorf("expected proactive fallback, got %q", c.Text)
	}
	if len(c.Flags) != 1 || c.Flags[0] != model.RuleUngroundedAction {
		t.Errorf("expected ungrounded action flag, got %v", c.Flags)
	}
}

func TestFactualGroundedActionKept(t *testing.T) {
	text := "我今天出门散步了，就像我跟你说的那样。"
	corpus := []string{"人格日程：今天出门散步，下午去了公园"}
	c := factualGround(text, factualContext{Corpus: corpus, Mode: model.ModeGeneral})
	if c.Corrected {
		t.Errorf("evidence-backed action must pass, got %q", c.Text)
	}
}

func TestFactualIndependentReadClaim(t *testing.T) {
	text := "I just read an article about sleep and it changed my mind."
	c := factualGround(text, factualContext{})
	if !c.Corrected {
		t.Fatal("independent read claim must be discarded")
	}
	if c.Text != factualFallbacks[model.ModeGeneral] {
		t.Errorf("empty mode should use the general fallback, got %q", c.Text)
	}
}

func TestFactualPlainReplyUntouched(t *testing.T) {
	text := "听起来你今天挺累的，早点休息吧。"
	c := factualGround(text, factualContext{})
	if c.Corrected {
		t.Errorf("reply without personal action claims must pass, got %q", c.Text)
	}
}
