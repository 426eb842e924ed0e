package consistency

import (
	"strings"
	"testing"

	"github.com/kagami-ai/kagami/internal/model"
)

func TestPronounFirstToSecondRewrite(t *testing.T) {
	text := "我昨晚写的代码报错了。要不要一起看看？"
	rc := roleContext{
		UserTexts:      []string{"我昨晚写的代码报错了，好烦"},
		AssistantTexts: []string{"晚安，好好休息"},
	}
	c := pronounRole(text, rc)
	if !c.Corrected {
		t.Fatal("expected perspective rewrite")
	}
	if !strings.Contains(c.Text, "你昨晚写的代码报错了") {
		t.Errorf("expected first-to-second conversion, got %q", c.Text)
	}
	if len(c.Flags) != 1 || c.Flags[0] != model.RulePronounRoleMismatch {
		t.Errorf("expected pronoun flag, got %v", c.Flags)
	}
}

func TestPronounRewriteIdempotent(t *testing.T) {
	rc := roleContext{
		UserTexts:      []string{"我昨晚写的代码报错了，好烦"},
		AssistantTexts: []string{"晚安，好好休息"},
	}
	first := pronounRole("我昨晚写的代码报错了。", rc)
	if !first.Corrected {
		t.Fatal("expected initial rewrite")
	}
	second := pronounRole(first.Text, rc)
	if second.Corrected {
		t.Errorf("corrected text must not trigger again, got %q", second.Text)
	}
}

func TestPronounSafeSelfStateSkipped(t *testing.T) {
	text := "我觉得昨天的做法挺好的。"
	rc := roleContext{
		UserTexts: []string{"昨天的做法挺好的，我觉得"},
	}
	c := pronounRole(text, rc)
	if c.Corrected {
		t.Errorf("self-state sentence must be left alone, got %q", c.Text)
	}
}

func TestPronounNoCueNoRewrite(t *testing.T) {
	text := "我喜欢安静的下雨声。"
	rc := roleContext{
		UserTexts: []string{"我喜欢安静的下雨声，很治愈"},
	}
	c := pronounRole(text, rc)
	if c.Corrected {
		t.Errorf("no time/action cue means no rewrite, got %q", c.Text)
	}
}

func TestPronounThirdPartyEvidenceBlocksRewrite(t *testing.T) {
	text := "他昨天改的配置坏了。"
	rc := roleContext{
		UserTexts:            []string{"昨天改的配置坏了"},
		ThirdPartyCandidates: []string{"同事"},
	}
	c := pronounRole(text, rc)
	if c.Corrected {
		t.Errorf("third-party evidence must block the rewrite, got %q", c.Text)
	}
}

func TestPronounThirdToSecondWithoutEvidence(t *testing.T) {
	text := "他昨天改的配置坏了。"
	rc := roleContext{
		UserTexts: []string{"我昨天改的配置坏了"},
	}
	c := pronounRole(text, rc)
	if !c.Corrected {
		t.Fatal("expected third-to-second rewrite")
	}
	if !strings.Contains(c.Text, "你昨天改的配置坏了") {
		t.Errorf("expected 他 converted to 你, got %q", c.Text)
	}
}

func TestPronounRewriteBudget(t *testing.T) {
	text := "我昨晚写的代码报错了。我昨天改的配置坏了。我上次做的表格丢了。"
	rc := roleContext{
		UserTexts: []string{"我昨晚写的代码报错了", "我昨天改的配置坏了", "我上次做的表格丢了"},
	}
	c := pronounRole(text, rc)
	if !c.Corrected {
		t.Fatal("expected rewrites")
	}
	// Only two sentences may be converted; the third keeps first person.
	if !strings.Contains(c.Text, "我上次做的表格丢了") {
		t.Errorf("third sentence should survive the rewrite budget, got %q", c.Text)
	}
}

func TestRoleContextWindow(t *testing.T) {
	var events []model.LifeEvent
	for i := 0; i < 20; i++ {
		events = append(events, model.LifeEvent{Type: "user_message", TS: int64(i), Payload: "m"})
	}
	rc := roleContextFromEvents(events, nil, nil)
	if len(rc.UserTexts) != historyWindow {
		t.Errorf("expected %d user texts, got %d", historyWindow, len(rc.UserTexts))
	}
}
